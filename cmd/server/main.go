package main

import (
	"fmt"
	"log"

	"github.com/productmatch/backend/config"
	httpDelivery "github.com/productmatch/backend/internal/delivery/http"
	"github.com/productmatch/backend/internal/logger"
	"github.com/productmatch/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logs, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logs.Infof("Starting productmatch backend v1.0.0")
	logs.Infof("Environment: %s", cfg.Server.Environment)
	logs.Infof("Port: %s", cfg.Server.Port)

	// Build the matching pipeline; a malformed matching config stops startup here
	queryCfg := cfg.ToQueryConfig()
	builder, err := usecase.NewQueryBuilder(queryCfg, logs)
	if err != nil {
		logs.Fatalf("Failed to create query builder: %v", err)
	}

	if queryCfg.Token == "" {
		logs.Warnf("Search API token not configured (set PRODUCTMATCH_MATCHING_TOKEN); callers must supply their own")
	}

	logs.Infof("Matching: dataType=%s, strategy=%s, numRecords=%d, key=%s, forcedAnd=%v",
		queryCfg.DataType,
		queryCfg.Strategy,
		queryCfg.NumRecords,
		queryCfg.MappingKey,
		queryCfg.ForcedAnd)

	queryService := usecase.NewQueryService(builder, logs)
	shaper := usecase.NewResultShaper(queryCfg)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(queryService, shaper, logs)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, logs)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logs.Infof("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		logs.Fatalf("Failed to start server: %v", err)
	}
}

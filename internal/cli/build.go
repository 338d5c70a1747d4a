package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/productmatch/backend/config"
	"github.com/productmatch/backend/internal/logger"
	"github.com/productmatch/backend/internal/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type buildOptions struct {
	input    string
	output   string
	cfgPath  string
	format   string
	failFast bool
	verbose  bool
}

func newBuildCmd() *cobra.Command {
	opts := buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build one search request per record and write them as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, opts)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.input, "input", "i", "", "records file (.csv, .jsonl) or - for stdin")
	fs.StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	fs.StringVar(&opts.cfgPath, "config", "", "matching config file (default: search ./config.yaml)")
	fs.StringVar(&opts.format, "format", "", "input format: csv or jsonl (default: from file extension)")
	fs.BoolVar(&opts.failFast, "fail-fast", false, "stop at the first record that cannot be prepared")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log every built query to stderr")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runBuild(cmd *cobra.Command, opts buildOptions) error {
	format := opts.format
	if format == "" {
		if opts.input == "-" {
			return fmt.Errorf("--format is required when reading stdin")
		}
		var err error
		if format, err = formatFromPath(opts.input); err != nil {
			return err
		}
	}

	cfg, err := config.LoadFile(opts.cfgPath)
	if err != nil {
		return err
	}

	logs, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	logs.SetOutput(cmd.ErrOrStderr())
	if opts.verbose {
		logs.SetLevel(logrus.DebugLevel)
	}

	builder, err := usecase.NewQueryBuilder(cfg.ToQueryConfig(), logs)
	if err != nil {
		return err
	}
	service := usecase.NewQueryService(builder, logs)

	in := cmd.InOrStdin()
	if opts.input != "-" {
		f, err := os.Open(opts.input)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	records, err := ReadRecords(in, format)
	if err != nil {
		return err
	}

	items, err := service.PrepareBatch(cmd.Context(), records)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	encoder := json.NewEncoder(out)
	encoder.SetEscapeHTML(false)

	failed := 0
	for _, item := range items {
		if err := encoder.Encode(item); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		if item.Error == "" {
			continue
		}
		failed++
		if opts.failFast {
			return fmt.Errorf("record %d: %s", item.Index+1, item.Error)
		}
	}

	logs.WithFields(logrus.Fields{
		"records": len(items),
		"failed":  failed,
	}).Info("querygen finished")

	return nil
}

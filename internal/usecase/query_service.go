package usecase

import (
	"context"
	"fmt"

	"github.com/productmatch/backend/internal/domain"
	"github.com/productmatch/backend/internal/logger"
	"github.com/sirupsen/logrus"
)

// QueryService prepares search requests for product records
type QueryService struct {
	builder *QueryBuilder
	logger  logrus.FieldLogger
}

// NewQueryService creates a new query service. A nil logger discards output.
func NewQueryService(builder *QueryBuilder, log logrus.FieldLogger) *QueryService {
	if log == nil {
		log = logger.Discard()
	}
	return &QueryService{
		builder: builder,
		logger:  log.WithField("component", "queryservice"),
	}
}

// Prepare builds the search request for a record.
// A nil record or one with no populated field is rejected with ErrInvalidRequest.
func (s *QueryService) Prepare(ctx context.Context, record *domain.Record) (*domain.SearchRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if record == nil || record.IsEmpty() {
		return nil, fmt.Errorf("%w: record has no populated field", domain.ErrInvalidRequest)
	}

	cfg := s.builder.config
	request := &domain.SearchRequest{
		DataType:   cfg.DataType,
		Query:      s.builder.Build(*record),
		NumRecords: cfg.NumRecords,
		Format:     domain.DefaultFormat,
		KeyField:   cfg.MappingKey,
		KeyValue:   s.builder.KeyValue(*record),
	}

	s.logger.WithFields(logrus.Fields{
		"dataType": request.DataType,
		"key":      request.KeyValue,
	}).Debug("prepared search request")

	return request, nil
}

// PrepareBatch prepares every record, reporting per-record failures on the item.
// It only returns an error when ctx is done before the batch completes.
func (s *QueryService) PrepareBatch(ctx context.Context, records []domain.Record) ([]domain.BatchItem, error) {
	items := make([]domain.BatchItem, 0, len(records))
	failed := 0

	for i := range records {
		if err := ctx.Err(); err != nil {
			return items, err
		}

		item := domain.BatchItem{Index: i}
		request, err := s.Prepare(ctx, &records[i])
		if err != nil {
			item.Error = err.Error()
			failed++
		} else {
			item.Request = request
		}
		items = append(items, item)
	}

	s.logger.WithFields(logrus.Fields{
		"records": len(records),
		"failed":  failed,
	}).Info("prepared batch")

	return items, nil
}

// Config returns a copy of the effective query configuration
func (s *QueryService) Config() domain.QueryConfig {
	return s.builder.Config()
}

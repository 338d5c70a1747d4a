package domain

import "context"

// BatchItem is the outcome of preparing one record of a batch
type BatchItem struct {
	Index   int            `json:"index"`
	Request *SearchRequest `json:"request,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// QueryPreparer turns product records into search requests
type QueryPreparer interface {
	Prepare(ctx context.Context, record *Record) (*SearchRequest, error)
	PrepareBatch(ctx context.Context, records []Record) ([]BatchItem, error)
	Config() QueryConfig
}

// ResultShaper applies output shaping rules to search results
type ResultShaper interface {
	ShapeAll(results []Result) []ShapedResult
}

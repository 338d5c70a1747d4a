package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/productmatch/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueryService(t *testing.T) *QueryService {
	t.Helper()
	return NewQueryService(newDefaultBuilder(t), nil)
}

func TestPrepare(t *testing.T) {
	s := newTestQueryService(t)
	ctx := context.Background()

	t.Run("builds search request", func(t *testing.T) {
		req, err := s.Prepare(ctx, &domain.Record{
			Brand:              "Sony",
			Manufacturer:       "SonyCorp",
			ManufacturerNumber: "ABC123",
			GTINs:              "012345678905",
		})
		require.NoError(t, err)

		assert.Equal(t, "products", req.DataType)
		assert.Equal(t, `((brand:"Sony" OR manufacturer:"SonyCorp") AND manufacturerNumber:"ABC123") OR gtins:"012345678905"`, req.Query)
		assert.Equal(t, 5, req.NumRecords)
		assert.Equal(t, "JSON", req.Format)
		assert.Equal(t, "gtins", req.KeyField)
		assert.Equal(t, "012345678905", req.KeyValue)
	})

	t.Run("rejects nil record", func(t *testing.T) {
		_, err := s.Prepare(ctx, nil)
		assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
	})

	t.Run("rejects empty record", func(t *testing.T) {
		_, err := s.Prepare(ctx, &domain.Record{})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("honours cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := s.Prepare(cancelled, &domain.Record{GTINs: "0123"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPrepare_TokenNeverLeaks(t *testing.T) {
	cfg := domain.DefaultQueryConfig()
	cfg.Token = "secret-token"
	b, err := NewQueryBuilder(cfg, nil)
	require.NoError(t, err)
	s := NewQueryService(b, nil)

	req, err := s.Prepare(context.Background(), &domain.Record{GTINs: "0123"})
	require.NoError(t, err)
	assert.NotContains(t, req.Query, "secret-token")
	assert.Equal(t, "secret-token", s.Config().Token)
}

func TestPrepareBatch(t *testing.T) {
	s := newTestQueryService(t)

	records := []domain.Record{
		{GTINs: "0123"},
		{},
		{Brand: "Sony", ManufacturerNumber: "ABC123"},
	}

	items, err := s.PrepareBatch(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, 0, items[0].Index)
	require.NotNil(t, items[0].Request)
	assert.Equal(t, `((brand:"" OR manufacturer:"") AND manufacturerNumber:"") OR gtins:"0123"`, items[0].Request.Query)
	assert.Empty(t, items[0].Error)

	assert.Equal(t, 1, items[1].Index)
	assert.Nil(t, items[1].Request)
	assert.Contains(t, items[1].Error, domain.ErrInvalidRequest.Error())

	require.NotNil(t, items[2].Request)
	assert.Equal(t, `((brand:"Sony" OR manufacturer:"") AND manufacturerNumber:"ABC123") OR gtins:""`, items[2].Request.Query)
	assert.Empty(t, items[2].Request.KeyValue)
}

func TestPrepareBatch_Cancelled(t *testing.T) {
	s := newTestQueryService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, err := s.PrepareBatch(ctx, []domain.Record{{GTINs: "0123"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, items)
}

func TestQueryService_Config(t *testing.T) {
	s := newTestQueryService(t)

	cfg := s.Config()
	cfg.FieldsMapping[domain.FieldBrand] = "mutated"

	assert.Equal(t, "brand", s.Config().FieldsMapping[domain.FieldBrand])
}

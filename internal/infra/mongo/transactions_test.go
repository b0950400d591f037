package mongo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	imongo "github.com/dvloznov/finance-insights/internal/infra/mongo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mockDataStore is a mock implementation of DataStore.
type mockDataStore struct {
	findAllFunc   func(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]bson.M, error)
	bulkWriteFunc func(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error)
}

func (m *mockDataStore) FindAll(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]bson.M, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, filter, opts...)
	}
	return nil, nil
}

func (m *mockDataStore) BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
	if m.bulkWriteFunc != nil {
		return m.bulkWriteFunc(ctx, models, opts...)
	}
	return &mongo.BulkWriteResult{}, nil
}

func mustDecimal128(t *testing.T, s string) primitive.Decimal128 {
	t.Helper()
	d, err := primitive.ParseDecimal128(s)
	require.NoError(t, err)
	return d
}

func TestLoadTransactions(t *testing.T) {
	var gotFilter interface{}
	ds := &mockDataStore{
		findAllFunc: func(_ context.Context, filter interface{}, _ ...*options.FindOptions) ([]bson.M, error) {
			gotFilter = filter
			return []bson.M{
				{
					"_id":         primitive.NewObjectID(),
					"account_id":  "acc-1",
					"date":        primitive.NewDateTimeFromTime(time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)),
					"description": "Payroll",
					"amount":      mustDecimal128(t, "2500.00"),
					"category":    "Income",
					"merchant":    "ACME Corp",
					"type":        "deposit",
				},
				{
					"account_id":  "acc-1",
					"date":        "2024-02-04",
					"description": "Museum",
					"amount":      -18.5,
					"category":    "Entertainment",
					"merchant":    "Louvre",
					"type":        "purchase",
					"location":    "Paris",
				},
			}, nil
		},
	}
	store := &imongo.TransactionStore{Collection: ds}

	raws, err := store.LoadTransactions(context.Background(), "acc-1")
	require.NoError(t, err)
	require.Len(t, raws, 2)

	assert.Equal(t, bson.M{"account_id": "acc-1"}, gotFilter)
	assert.Equal(t, "2024-02-03", raws[0].Date)
	assert.True(t, raws[0].Amount.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, "-18.5", raws[1].Amount.String())
	require.NotNil(t, raws[1].Location)
	assert.Equal(t, "Paris", *raws[1].Location)
}

func TestLoadTransactions_AllAccounts(t *testing.T) {
	var gotFilter interface{}
	ds := &mockDataStore{
		findAllFunc: func(_ context.Context, filter interface{}, _ ...*options.FindOptions) ([]bson.M, error) {
			gotFilter = filter
			return nil, nil
		},
	}
	raws, err := imongo.AccountSource{Store: &imongo.TransactionStore{Collection: ds}}.LoadTransactions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, raws)
	assert.Equal(t, bson.M{}, gotFilter)
}

func TestLoadTransactions_Errors(t *testing.T) {
	ds := &mockDataStore{
		findAllFunc: func(context.Context, interface{}, ...*options.FindOptions) ([]bson.M, error) {
			return nil, errors.New("connection reset")
		},
	}
	_, err := (&imongo.TransactionStore{Collection: ds}).LoadTransactions(context.Background(), "x")
	assert.ErrorContains(t, err, "connection reset")

	ds.findAllFunc = func(context.Context, interface{}, ...*options.FindOptions) ([]bson.M, error) {
		return []bson.M{{"amount": true}}, nil
	}
	_, err = (&imongo.TransactionStore{Collection: ds}).LoadTransactions(context.Background(), "x")
	assert.ErrorContains(t, err, `field "amount"`)
}

func TestUpsertTransactions(t *testing.T) {
	amt := decimal.RequireFromString("-42.10")
	loc := "Lisbon"
	raws := []domain.RawTransaction{
		{Date: "2024-03-01", Description: "Dinner", Amount: &amt, Category: "Dining", Merchant: "Tasca", Type: "purchase", Location: &loc},
		{Date: "2024-03-02", Description: "Taxi", Amount: &amt, Category: "Transport", Merchant: "Uber", Type: "purchase"},
	}

	var writes int
	var ordered *bool
	ds := &mockDataStore{
		bulkWriteFunc: func(_ context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
			writes = len(models)
			if len(opts) > 0 {
				ordered = opts[0].Ordered
			}
			return &mongo.BulkWriteResult{UpsertedCount: 1, ModifiedCount: 1}, nil
		},
	}

	n, err := (&imongo.TransactionStore{Collection: ds}).UpsertTransactions(context.Background(), "acc-2", raws)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 2, writes)
	require.NotNil(t, ordered)
	assert.False(t, *ordered)
}

func TestUpsertTransactions_Empty(t *testing.T) {
	ds := &mockDataStore{
		bulkWriteFunc: func(context.Context, []mongo.WriteModel, ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
			t.Fatal("BulkWrite should not be called")
			return nil, nil
		},
	}
	n, err := (&imongo.TransactionStore{Collection: ds}).UpsertTransactions(context.Background(), "acc", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

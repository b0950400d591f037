package mongo

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/pipeline"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FieldAccountID scopes data-lake documents to one account.
const FieldAccountID = "account_id"

// TransactionStore reads and writes data-lake transaction documents.
type TransactionStore struct {
	Collection DataStore
}

// LoadTransactions returns the account's transactions in date order. An
// empty accountID loads every document in the collection.
func (s *TransactionStore) LoadTransactions(ctx context.Context, accountID string) ([]domain.RawTransaction, error) {
	filter := bson.M{}
	if accountID != "" {
		filter[FieldAccountID] = accountID
	}
	opts := options.Find().SetSort(bson.D{{Key: pipeline.FieldDate, Value: 1}})

	docs, err := s.Collection.FindAll(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("LoadTransactions: %w", err)
	}

	records := make([]map[string]interface{}, 0, len(docs))
	for _, doc := range docs {
		records = append(records, doc)
	}
	raws, err := pipeline.TransformRecords(records)
	if err != nil {
		return nil, fmt.Errorf("LoadTransactions: account %q: %w", accountID, err)
	}
	return raws, nil
}

// UpsertTransactions writes raws for an account, replacing documents with
// the same date, description, amount and merchant.
func (s *TransactionStore) UpsertTransactions(ctx context.Context, accountID string, raws []domain.RawTransaction) (int64, error) {
	if len(raws) == 0 {
		return 0, nil
	}

	models := make([]mongo.WriteModel, 0, len(raws))
	for i, r := range raws {
		doc, err := toDocument(accountID, r)
		if err != nil {
			return 0, fmt.Errorf("UpsertTransactions: transaction %d: %w", i, err)
		}
		filter := bson.M{
			FieldAccountID:            accountID,
			pipeline.FieldDate:        doc[pipeline.FieldDate],
			pipeline.FieldDescription: doc[pipeline.FieldDescription],
			pipeline.FieldAmount:      doc[pipeline.FieldAmount],
			pipeline.FieldMerchant:    doc[pipeline.FieldMerchant],
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(filter).
			SetUpdate(bson.M{"$set": doc}).
			SetUpsert(true))
	}

	res, err := s.Collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("UpsertTransactions: %w", err)
	}
	return res.UpsertedCount + res.ModifiedCount, nil
}

func toDocument(accountID string, r domain.RawTransaction) (bson.M, error) {
	doc := bson.M{
		FieldAccountID:            accountID,
		pipeline.FieldDate:        r.Date,
		pipeline.FieldDescription: r.Description,
		pipeline.FieldCategory:    r.Category,
		pipeline.FieldMerchant:    r.Merchant,
		pipeline.FieldType:        r.Type,
	}
	if r.Amount != nil {
		amt, err := primitive.ParseDecimal128(r.Amount.String())
		if err != nil {
			return nil, fmt.Errorf("amount %s: %w", r.Amount, err)
		}
		doc[pipeline.FieldAmount] = amt
	}
	if r.Location != nil {
		doc[pipeline.FieldLocation] = *r.Location
	}
	return doc, nil
}

// AccountSource loads one account's transactions for analysis.
type AccountSource struct {
	Store     *TransactionStore
	AccountID string
}

// LoadTransactions delegates to the store.
func (a AccountSource) LoadTransactions(ctx context.Context) ([]domain.RawTransaction, error) {
	return a.Store.LoadTransactions(ctx, a.AccountID)
}

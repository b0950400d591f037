package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the coarse kind of a transaction as reported by the source.
type TransactionType string

const (
	TypeDeposit     TransactionType = "deposit"
	TypeWithdrawal  TransactionType = "withdrawal"
	TypePurchase    TransactionType = "purchase"
	TypeFee         TransactionType = "fee"
	TypeBillPayment TransactionType = "bill_payment"
)

// RawTransaction is a transaction as supplied by a caller (JSON body, CSV row,
// Mongo document, BigQuery row). It is validated and normalized into a
// Transaction before any detector sees it.
type RawTransaction struct {
	Date        string           `json:"date" bson:"date" validate:"required"`
	Description string           `json:"description" bson:"description" validate:"required"`
	Amount      *decimal.Decimal `json:"amount" bson:"amount" validate:"required"`
	Category    string           `json:"category" bson:"category" validate:"required"`
	Merchant    string           `json:"merchant" bson:"merchant" validate:"required"`
	Type        string           `json:"type" bson:"type" validate:"required,oneof=deposit withdrawal purchase fee bill_payment"`
	Location    *string          `json:"location,omitempty" bson:"location,omitempty"`
}

// Transaction is one normalized transaction. Amount is negative for outflows.
// Date has day granularity (UTC midnight).
type Transaction struct {
	ID          int             `json:"transaction_id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Merchant    string          `json:"merchant"`
	Type        TransactionType `json:"type"`
	Location    *string         `json:"location,omitempty"`
}

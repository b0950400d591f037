package pipeline

// Field names of a generic transaction record, as found in JSON payloads
// and data-lake documents.
const (
	FieldDate        = "date"
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldMerchant    = "merchant"
	FieldType        = "type"
	FieldLocation    = "location"

	// RecordsKey is the top-level key holding the record list in a document
	// such as {"transactions": [...]}.
	RecordsKey = "transactions"
)

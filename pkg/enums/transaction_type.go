package enums

// TransactionType categorizes the header; only sales are written today,
// returns are reserved for the returns ledger.
type TransactionType string

const (
	TransactionTypeSale   TransactionType = "sale"
	TransactionTypeReturn TransactionType = "return"
)

// String implements fmt.Stringer.
func (t TransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionType.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeSale || t == TransactionTypeReturn
}

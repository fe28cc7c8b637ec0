package enums

import "fmt"

// TransactionSource distinguishes the sales channel a transaction came from.
type TransactionSource string

const (
	TransactionSourcePOS    TransactionSource = "pos_sale"
	TransactionSourceOnline TransactionSource = "online_sale"
)

var validTransactionSources = []TransactionSource{
	TransactionSourcePOS,
	TransactionSourceOnline,
}

// String implements fmt.Stringer.
func (s TransactionSource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TransactionSource.
func (s TransactionSource) IsValid() bool {
	for _, candidate := range validTransactionSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTransactionSource converts raw input into a TransactionSource.
func ParseTransactionSource(value string) (TransactionSource, error) {
	for _, candidate := range validTransactionSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction source %q", value)
}

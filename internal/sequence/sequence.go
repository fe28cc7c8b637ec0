package sequence

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	pkgerrors "github.com/dvpgiftcenter/giftshop-backend/pkg/errors"
	"gorm.io/gorm"
)

const (
	dateKeyLayout   = "20060102"
	referencePrefix = "REF-"
	referenceLength = 12
	referenceChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NextBillNumber allocates the next bill number for the prefix and day,
// formatted {PREFIX}{YYYYMMDD}{NNNN}. The counter row is advanced with an
// atomic upsert, so two transactions committing in the same instant still
// receive distinct numbers.
func NextBillNumber(ctx context.Context, tx *gorm.DB, prefix string, at time.Time) (string, error) {
	if tx == nil {
		return "", fmt.Errorf("tx is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "bill prefix is required")
	}

	dateKey := at.UTC().Format(dateKeyLayout)

	var next int64
	err := tx.WithContext(ctx).Raw(`
		INSERT INTO bill_counters (prefix, date_key, next_value)
		VALUES (?, ?, 1)
		ON CONFLICT (prefix, date_key)
		DO UPDATE SET next_value = bill_counters.next_value + 1
		RETURNING next_value`, prefix, dateKey).Scan(&next).Error
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "advancing bill counter")
	}

	return fmt.Sprintf("%s%s%04d", prefix, dateKey, next), nil
}

// NextPaymentReference returns REF- followed by 12 random uppercase
// alphanumerics. Uniqueness is enforced by the payments table; callers retry
// on a unique violation.
func NextPaymentReference() (string, error) {
	var sb strings.Builder
	sb.Grow(len(referencePrefix) + referenceLength)
	sb.WriteString(referencePrefix)

	max := big.NewInt(int64(len(referenceChars)))
	for i := 0; i < referenceLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("reading random bytes: %w", err)
		}
		sb.WriteByte(referenceChars[n.Int64()])
	}
	return sb.String(), nil
}

package models

// BillCounter is the per-prefix, per-day sequence row behind bill numbering.
// next_value is advanced with an atomic upsert so concurrent checkouts can
// never mint the same bill number.
type BillCounter struct {
	Prefix    string `gorm:"column:prefix;primaryKey"`
	DateKey   string `gorm:"column:date_key;primaryKey"`
	NextValue int64  `gorm:"column:next_value;not null"`
}

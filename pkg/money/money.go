package money

import "github.com/shopspring/decimal"

// Scale is the monetary precision every stored amount is rounded to.
const Scale = 2

// Round normalizes an amount to two decimal places, half away from zero.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(Scale)
}

// LineTotal computes unitPrice*quantity - discount at monetary scale.
func LineTotal(unitPrice decimal.Decimal, quantity int, discount decimal.Decimal) decimal.Decimal {
	return Round(unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Sub(discount))
}

// Net computes total + tax - discount at monetary scale.
func Net(total, tax, discount decimal.Decimal) decimal.Decimal {
	return Round(total.Add(tax).Sub(discount))
}

// Tax applies a rate to a total at monetary scale.
func Tax(total, rate decimal.Decimal) decimal.Decimal {
	return Round(total.Mul(rate))
}

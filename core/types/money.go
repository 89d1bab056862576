// Package types holds the pricebook, demand and estimate types shared by the
// estimator packages.
package types

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places money is rounded to.
const MoneyPlaces = 2

// Currency represents a currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyCAD Currency = "CAD"
	CurrencyEUR Currency = "EUR"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// RoundMoney rounds v to currency precision, half to even.
func RoundMoney(v decimal.Decimal) decimal.Decimal {
	return v.RoundBank(MoneyPlaces)
}

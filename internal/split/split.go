// Package split computes each participant's share of a receipt total in the
// settlement asset. All arithmetic is exact decimal; binary floats never
// touch an amount that ends up in a payment URI.
package split

import (
	"errors"

	"github.com/shopspring/decimal"
)

// assetScale is the number of fractional digits of the settlement asset
// (18 for ETH: one wei).
const assetScale = 18

var (
	ErrNoParticipants = errors.New("participant count must not be negative")
	ErrNoRate         = errors.New("exchange rate must be positive")
	ErrNoTotal        = errors.New("receipt total must be positive")
)

// Result is one even-split computation.
type Result struct {
	Payers        int             // total payers: sender + others
	PerPersonFiat decimal.Decimal // share in the receipt currency, truncated
	AssetAmount   decimal.Decimal // share in the asset, truncated at 18 digits
	SmallestUnit  decimal.Decimal // AssetAmount scaled to wei, always integral
}

// Even divides total evenly among others+1 payers and converts the share to
// the asset at rate (asset/fiat price). Divisions that do not terminate are
// truncated, never rounded up, so no participant is ever over-charged.
// others=0 means the sender pays the full total alone.
func Even(total decimal.Decimal, others int, rate decimal.Decimal) (Result, error) {
	if others < 0 {
		return Result{}, ErrNoParticipants
	}
	if !total.IsPositive() {
		return Result{}, ErrNoTotal
	}
	if !rate.IsPositive() {
		return Result{}, ErrNoRate
	}

	payers := others + 1
	perPerson, _ := total.QuoRem(decimal.NewFromInt(int64(payers)), assetScale)
	assetAmount, _ := perPerson.QuoRem(rate, assetScale)

	return Result{
		Payers:        payers,
		PerPersonFiat: perPerson,
		AssetAmount:   assetAmount,
		SmallestUnit:  assetAmount.Shift(assetScale),
	}, nil
}

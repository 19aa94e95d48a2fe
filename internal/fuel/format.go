package fuel

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceDisplay splits a price for display emphasis, e.g. 1.859 becomes
// Main "1,85" and Last "9".
type PriceDisplay struct {
	Main string `json:"main"`
	Last string `json:"last"`
}

func (d PriceDisplay) String() string {
	return d.Main + d.Last
}

// PriceFormat renders prices with three fractional digits using a fixed
// decimal separator, independent of the process locale.
type PriceFormat struct {
	DecimalSeparator string
}

// DefaultPriceFormat uses the comma separator of the German price boards.
var DefaultPriceFormat = PriceFormat{DecimalSeparator: ","}

// Split rounds price to three fractional digits and returns its display parts.
func (f PriceFormat) Split(price float64) (PriceDisplay, error) {
	d := decimal.NewFromFloat(price).Round(3)
	if d.IsNegative() {
		return PriceDisplay{}, fmt.Errorf("%w: %s", ErrNegativePrice, d.String())
	}

	milli := d.Shift(3).IntPart()
	whole := milli / 1000
	firstTwo := (milli % 1000) / 10
	third := milli % 10

	sep := f.DecimalSeparator
	if sep == "" {
		sep = DefaultPriceFormat.DecimalSeparator
	}

	return PriceDisplay{
		Main: fmt.Sprintf("%d%s%02d", whole, sep, firstTwo),
		Last: fmt.Sprintf("%d", third),
	}, nil
}

// Format renders price as a single string with three fractional digits.
// Negative values are rendered with a leading minus sign.
func (f PriceFormat) Format(price float64) string {
	if price < 0 {
		return "-" + f.Format(-price)
	}
	d, err := f.Split(price)
	if err != nil {
		return ""
	}
	return d.String()
}

// Package sources implements the readers for the published price documents.
package sources

import (
	"fmt"

	"github.com/annedoesstuff/budgetBenzin/internal/fuel"
)

// Layouts of the published documents.
const (
	LayoutCombined = "combined"
	LayoutSplit    = "split"
)

// New returns the source for layout reading through fetcher.
func New(layout string, fetcher Fetcher, pricesDoc, stationsDoc string) (fuel.Source, error) {
	switch layout {
	case LayoutCombined:
		return NewCombined(fetcher, pricesDoc), nil
	case LayoutSplit:
		return NewSplit(fetcher, pricesDoc, stationsDoc), nil
	default:
		return nil, fmt.Errorf("unknown source layout %q", layout)
	}
}

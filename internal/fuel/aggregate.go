package fuel

import (
	"fmt"
	"sort"
	"time"
)

// Quote is one station on the price board.
type Quote struct {
	StationID  string       `json:"id"`
	Label      string       `json:"label"`
	Station    StationInfo  `json:"station"`
	Price      float64      `json:"price"`
	Display    PriceDisplay `json:"display"`
	IsCheapest bool         `json:"isCheapest"`
}

// PriceBoard is the ranked list of open stations in the latest snapshot.
type PriceBoard struct {
	Kind      Kind      `json:"fuel"`
	Timestamp time.Time `json:"timestamp"`
	Cheapest  float64   `json:"cheapest"`
	Ranked    []Quote   `json:"ranked"`
}

// CurrentPrices ranks the open stations of the latest snapshot by their price
// for kind. Every station sharing the minimum price is flagged as cheapest and
// stations with equal prices keep their order from the snapshot.
func CurrentPrices(h History, kind Kind, format PriceFormat) (PriceBoard, error) {
	latest, ok := h.Latest()
	if !ok || len(latest.Stations) == 0 {
		return PriceBoard{}, ErrNoData
	}

	var quotes []Quote
	for _, st := range latest.Stations {
		price, ok := st.Price(kind)
		if !ok {
			continue
		}
		display, err := format.Split(price)
		if err != nil {
			return PriceBoard{}, fmt.Errorf("station %s: %w", st.ID, err)
		}
		quotes = append(quotes, Quote{
			StationID: st.ID,
			Label:     st.Info.Label(),
			Station:   st.Info,
			Price:     price,
			Display:   display,
		})
	}

	if len(quotes) == 0 {
		return PriceBoard{}, fmt.Errorf("%w: %s", ErrNoDataForSelection, kind.Label())
	}

	cheapest := quotes[0].Price
	for _, q := range quotes[1:] {
		if q.Price < cheapest {
			cheapest = q.Price
		}
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Price < quotes[j].Price
	})
	for i := range quotes {
		quotes[i].IsCheapest = quotes[i].Price == cheapest
	}

	return PriceBoard{
		Kind:      kind,
		Timestamp: latest.Timestamp,
		Cheapest:  cheapest,
		Ranked:    quotes,
	}, nil
}

// cheapestIn returns the minimum valid price for kind in s.
func cheapestIn(s Snapshot, kind Kind) (float64, bool) {
	var (
		best  float64
		found bool
	)
	for _, st := range s.Stations {
		p, ok := st.Price(kind)
		if !ok {
			continue
		}
		if !found || p < best {
			best = p
			found = true
		}
	}
	return best, found
}

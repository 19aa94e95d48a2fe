package fuel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Verdict is the outcome of a recommendation.
type Verdict string

const (
	VerdictBuy                 Verdict = "buy"
	VerdictWait                Verdict = "wait"
	VerdictInsufficientHistory Verdict = "insufficient_history"
	VerdictNoData              Verdict = "no_data"
)

// Style is the styling hook for a rendered recommendation.
type Style string

const (
	StyleBuy     Style = "buy"
	StyleWait    Style = "wait"
	StyleNeutral Style = "neutral"
)

// RecommendationWindow is the trailing slice of history considered.
const RecommendationWindow = 24 * time.Hour

// Recommendation is the buy/wait advice for a fuel kind.
// The price fields are only set for VerdictBuy and VerdictWait.
type Recommendation struct {
	Kind            Kind    `json:"fuel"`
	Verdict         Verdict `json:"verdict"`
	Style           Style   `json:"style"`
	Message         string  `json:"message"`
	CurrentCheapest float64 `json:"currentCheapest,omitempty"`
	RecentMin       float64 `json:"recentMin,omitempty"`
	RecentAvg       float64 `json:"recentAvg,omitempty"`
}

// Err maps the informational verdicts to their sentinel error.
func (r Recommendation) Err() error {
	switch r.Verdict {
	case VerdictInsufficientHistory:
		return ErrInsufficientHistory
	case VerdictNoData:
		return ErrNoDataForSelection
	default:
		return nil
	}
}

// Recommend compares the cheapest current price for kind against the
// readings of the last 24 hours. now only selects the wording of a WAIT
// verdict and is evaluated in its own location.
func Recommend(h History, kind Kind, now time.Time, format PriceFormat) Recommendation {
	if len(h.Snapshots) < 2 {
		return Recommendation{
			Kind:    kind,
			Verdict: VerdictInsufficientHistory,
			Style:   StyleNeutral,
			Message: "Not enough price history for a recommendation yet.",
		}
	}

	latest, _ := h.Latest()
	current, ok := cheapestIn(latest, kind)
	if !ok {
		return Recommendation{
			Kind:    kind,
			Verdict: VerdictNoData,
			Style:   StyleNeutral,
			Message: fmt.Sprintf("No current %s prices available for a recommendation.", kind.Label()),
		}
	}

	// The average is exact in decimal so a tie with the current price stays a tie.
	cutoff := latest.Timestamp.Add(-RecommendationWindow)
	recentMin := current
	sum := decimal.Zero
	count := 0
	for _, snap := range h.Snapshots {
		if !snap.Timestamp.After(cutoff) {
			continue
		}
		for _, st := range snap.Stations {
			p, ok := st.Price(kind)
			if !ok {
				continue
			}
			if p < recentMin {
				recentMin = p
			}
			sum = sum.Add(decimal.NewFromFloat(p))
			count++
		}
	}
	cur := decimal.NewFromFloat(current)
	avg := cur
	if count > 0 {
		avg = sum.Div(decimal.NewFromInt(int64(count)))
	}

	rec := Recommendation{
		Kind:            kind,
		CurrentCheapest: current,
		RecentMin:       recentMin,
		RecentAvg:       avg.InexactFloat64(),
	}

	switch {
	case current <= recentMin:
		rec.Verdict, rec.Style = VerdictBuy, StyleBuy
		rec.Message = fmt.Sprintf("Buy now: %s € matches the lowest price of the last 24 hours.",
			format.Format(current))
	case cur.LessThan(avg):
		rec.Verdict, rec.Style = VerdictBuy, StyleBuy
		rec.Message = fmt.Sprintf("Buy now: %s € is %s € below the 24-hour average.",
			format.Format(current), format.Format(avg.Sub(cur).InexactFloat64()))
	default:
		rec.Verdict, rec.Style = VerdictWait, StyleWait
		rec.Message = "Wait: " + waitHint(now.Hour())
	}
	return rec
}

// waitHint picks the wording for a WAIT verdict from the local hour of day.
func waitHint(hour int) string {
	switch {
	case hour >= 18 && hour < 22:
		return "prices tend to drop by late evening."
	case hour >= 22 || hour < 6:
		return "prices may fall during the day."
	default:
		return "prices may fall by late afternoon or evening."
	}
}

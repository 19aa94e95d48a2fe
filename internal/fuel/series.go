package fuel

import (
	"time"

	"github.com/annedoesstuff/budgetBenzin/internal/common"
)

// Palette holds the line colours assigned to chart series in order.
var Palette = []string{
	"#007bff", "#28a745", "#dc3545", "#ffc107", "#17a2b8", "#6f42c1",
	"#f06292", "#ff8a65", "#a1887f", "#90a4ae",
}

// Point is one valid reading of a station.
type Point struct {
	Timestamp time.Time `json:"t"`
	Price     float64   `json:"price"`
}

// Series is the price history of a single station.
type Series struct {
	StationID string  `json:"id"`
	Label     string  `json:"label"`
	Color     string  `json:"color"`
	Points    []Point `json:"points"`
}

// TimeSeries groups the valid readings for kind into one series per station.
// Stations with fewer than two points are left out. Series are ordered by the
// first appearance of their station (registry first, then snapshots) and are
// coloured by their position among the series that remain.
func TimeSeries(h History, kind Kind) []Series {
	type entry struct {
		info   StationInfo
		points []Point
	}

	var order []string
	byID := make(map[string]*entry)

	see := func(id string, info StationInfo) *entry {
		e, ok := byID[id]
		if !ok {
			e = &entry{info: info}
			byID[id] = e
			order = append(order, id)
		}
		return e
	}

	for _, r := range h.Registry {
		see(r.ID, r.Info)
	}

	for _, snap := range h.Snapshots {
		for _, st := range snap.Stations {
			e := see(st.ID, st.Info)
			if p, ok := st.Price(kind); ok {
				e.points = append(e.points, Point{Timestamp: snap.Timestamp, Price: p})
			}
		}
	}

	out := make([]Series, 0, len(order))
	for _, id := range order {
		e := byID[id]
		if len(e.points) < 2 {
			continue
		}
		out = append(out, Series{
			StationID: id,
			Label:     common.FirstNonEmpty(e.info.Brand, e.info.Name, id),
			Color:     Palette[len(out)%len(Palette)],
			Points:    e.points,
		})
	}
	return out
}

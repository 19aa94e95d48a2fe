package sources

import (
	"context"
	"encoding/json"

	"github.com/annedoesstuff/budgetBenzin/internal/fuel"
)

// Combined loads a single document in which every snapshot embeds the full
// station records:
//
//	[{"timestamp": "...", "stations": [{"id": "...", "isOpen": true, "diesel": 1.759, ...}]}]
type Combined struct {
	fetcher Fetcher
	doc     string
}

func NewCombined(fetcher Fetcher, pricesDoc string) *Combined {
	return &Combined{fetcher: fetcher, doc: pricesDoc}
}

func (c *Combined) Name() string {
	return "combined:" + c.fetcher.Name()
}

func (c *Combined) Load(ctx context.Context) (fuel.History, error) {
	body, err := c.fetcher.Fetch(ctx, c.doc)
	if err != nil {
		return fuel.History{}, err
	}
	snaps, err := decodeCombined(c.doc, body)
	if err != nil {
		return fuel.History{}, err
	}
	return fuel.History{Snapshots: snaps}, nil
}

func decodeCombined(doc string, body []byte) ([]fuel.Snapshot, error) {
	entries, err := decodeArray(body)
	if err != nil {
		return nil, malformed(doc, "%v", err)
	}
	if len(entries) == 0 {
		return nil, malformed(doc, "no snapshots")
	}

	snaps := make([]fuel.Snapshot, 0, len(entries))
	for i, raw := range entries {
		var entry struct {
			Timestamp json.RawMessage `json:"timestamp"`
			Stations  json.RawMessage `json:"stations"`
		}
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, malformed(doc, "snapshot %d: %v", i, err)
		}
		ts, err := parseTimestamp(entry.Timestamp)
		if err != nil {
			return nil, malformed(doc, "snapshot %d: %v", i, err)
		}

		var stations []json.RawMessage
		if !isNull(entry.Stations) {
			if stations, err = decodeArray(entry.Stations); err != nil {
				return nil, malformed(doc, "snapshot %d stations: %v", i, err)
			}
		}

		snap := fuel.Snapshot{Timestamp: ts}
		for j, rawStation := range stations {
			f, err := decodeFields(rawStation)
			if err != nil {
				return nil, malformed(doc, "snapshot %d station %d: %v", i, j, err)
			}
			id := f.str("id")
			if id == "" {
				continue
			}
			snap.Stations = append(snap.Stations, fuel.StationReading{
				ID:     id,
				Info:   f.info(),
				Open:   f.boolean("isOpen"),
				Prices: f.prices(),
			})
		}
		snaps = append(snaps, snap)
	}

	sortSnapshots(snaps)
	return snaps, nil
}

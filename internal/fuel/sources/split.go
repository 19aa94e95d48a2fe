package sources

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"github.com/annedoesstuff/budgetBenzin/internal/fuel"
)

// StatusOpen is the station status of an open station in the split layout.
const StatusOpen = "open"

// Split loads the price history and the station registry from two separate
// documents:
//
//	prices.json:   [{"timestamp": "...", "prices": {"<id>": {"status": "open", "e5": 1.859}}}]
//	stations.json: {"<id>": {"brand": "...", "street": "...", ...}}
type Split struct {
	fetcher     Fetcher
	pricesDoc   string
	stationsDoc string
}

func NewSplit(fetcher Fetcher, pricesDoc, stationsDoc string) *Split {
	return &Split{fetcher: fetcher, pricesDoc: pricesDoc, stationsDoc: stationsDoc}
}

func (s *Split) Name() string {
	return "split:" + s.fetcher.Name()
}

// Load requests both documents concurrently and fails if either fails.
func (s *Split) Load(ctx context.Context) (fuel.History, error) {
	var pricesBody, stationsBody []byte

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := s.fetcher.Fetch(gctx, s.pricesDoc)
		pricesBody = b
		return err
	})
	g.Go(func() error {
		b, err := s.fetcher.Fetch(gctx, s.stationsDoc)
		stationsBody = b
		return err
	})
	if err := g.Wait(); err != nil {
		return fuel.History{}, err
	}

	registry, err := decodeRegistry(s.stationsDoc, stationsBody)
	if err != nil {
		return fuel.History{}, err
	}
	snaps, err := decodeSplitPrices(s.pricesDoc, pricesBody, registry)
	if err != nil {
		return fuel.History{}, err
	}
	return fuel.History{Snapshots: snaps, Registry: registry}, nil
}

func decodeRegistry(doc string, body []byte) ([]fuel.RegistryEntry, error) {
	if isNull(body) {
		return nil, malformed(doc, "no station registry")
	}
	members, err := decodeObject(body)
	if err != nil {
		return nil, malformed(doc, "%v", err)
	}

	registry := make([]fuel.RegistryEntry, 0, len(members))
	for _, m := range members {
		f, err := decodeFields(m.Value)
		if err != nil {
			return nil, malformed(doc, "station %s: %v", m.Key, err)
		}
		registry = append(registry, fuel.RegistryEntry{ID: m.Key, Info: f.info()})
	}
	return registry, nil
}

func decodeSplitPrices(doc string, body []byte, registry []fuel.RegistryEntry) ([]fuel.Snapshot, error) {
	entries, err := decodeArray(body)
	if err != nil {
		return nil, malformed(doc, "%v", err)
	}
	if len(entries) == 0 {
		return nil, malformed(doc, "no snapshots")
	}

	infos := make(map[string]fuel.StationInfo, len(registry))
	for _, r := range registry {
		infos[r.ID] = r.Info
	}

	snaps := make([]fuel.Snapshot, 0, len(entries))
	for i, raw := range entries {
		var entry struct {
			Timestamp json.RawMessage `json:"timestamp"`
			Prices    json.RawMessage `json:"prices"`
		}
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, malformed(doc, "snapshot %d: %v", i, err)
		}
		ts, err := parseTimestamp(entry.Timestamp)
		if err != nil {
			return nil, malformed(doc, "snapshot %d: %v", i, err)
		}

		snap := fuel.Snapshot{Timestamp: ts}
		if !isNull(entry.Prices) {
			members, err := decodeObject(entry.Prices)
			if err != nil {
				return nil, malformed(doc, "snapshot %d prices: %v", i, err)
			}
			for _, m := range members {
				f, err := decodeFields(m.Value)
				if err != nil {
					return nil, malformed(doc, "snapshot %d station %s: %v", i, m.Key, err)
				}
				snap.Stations = append(snap.Stations, fuel.StationReading{
					ID:     m.Key,
					Info:   infos[m.Key],
					Open:   f.str("status") == StatusOpen,
					Prices: f.prices(),
				})
			}
		}
		snaps = append(snaps, snap)
	}

	sortSnapshots(snaps)
	return snaps, nil
}

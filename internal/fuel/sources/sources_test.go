package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annedoesstuff/budgetBenzin/internal/fuel"
)

const combinedDoc = `[
  {"timestamp": "2025-06-02T08:00:00+00:00", "stations": [
    {"id": "x", "brand": "ARAL", "name": "Aral Tankstelle", "street": "Hauptstr.", "houseNumber": "1",
     "postCode": 4109, "place": "Leipzig", "isOpen": true, "diesel": 1.8, "e5": false, "e10": null}
  ]},
  {"timestamp": "2025-06-02T09:00:00Z", "stations": [
    {"id": "x", "brand": "ARAL", "name": "Aral Tankstelle", "isOpen": true, "diesel": 1.75},
    {"id": "y", "brand": "", "name": "Freie", "isOpen": "yes", "diesel": 1.76},
    {"name": "without id", "isOpen": true, "diesel": 1.1}
  ]}
]`

const splitPricesDoc = `[
  {"timestamp": 1748851200, "prices": {
    "z": {"status": "open", "diesel": 1.79, "e5": 1.85},
    "a": {"status": "closed", "diesel": 1.70},
    "m": {"status": "open", "diesel": false}
  }},
  {"timestamp": 1748854800.5, "prices": null}
]`

const splitStationsDoc = `{
  "m": {"brand": "JET", "street": "Ring", "houseNumber": "", "postCode": "04109", "place": "Leipzig"},
  "z": {"name": "Zapfsäule", "street": "Weg", "houseNumber": 7, "postCode": "04109", "place": "Leipzig"}
}`

type mapFetcher map[string]string

func (m mapFetcher) Name() string { return "map" }

func (m mapFetcher) Fetch(_ context.Context, name string) ([]byte, error) {
	body, ok := m[name]
	if !ok {
		return nil, fuel.ErrUnreachable
	}
	return []byte(body), nil
}

func TestCombined_Load(t *testing.T) {
	src := NewCombined(mapFetcher{"prices.json": combinedDoc}, "prices.json")

	h, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, h.Snapshots, 2)
	assert.Empty(t, h.Registry)

	first := h.Snapshots[0]
	assert.Equal(t, time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC), first.Timestamp.UTC())
	require.Len(t, first.Stations, 1)
	x := first.Stations[0]
	assert.Equal(t, "x", x.ID)
	assert.True(t, x.Open)
	assert.Equal(t, map[fuel.Kind]float64{fuel.KindDiesel: 1.8}, x.Prices)
	assert.Equal(t, fuel.StationInfo{
		Brand: "ARAL", Name: "Aral Tankstelle", Street: "Hauptstr.", HouseNumber: "1",
		PostCode: "4109", Place: "Leipzig",
	}, x.Info)

	second := h.Snapshots[1]
	require.Len(t, second.Stations, 2, "stations without id are skipped")
	assert.False(t, second.Stations[1].Open, "non-boolean isOpen counts as closed")
}

func TestCombined_EmptyOrMalformed(t *testing.T) {
	for name, body := range map[string]string{
		"null":          `null`,
		"empty list":    `[]`,
		"object":        `{"timestamp": "2025-06-02T08:00:00Z"}`,
		"bad timestamp": `[{"timestamp": "yesterday", "stations": []}]`,
		"bad station":   `[{"timestamp": "2025-06-02T08:00:00Z", "stations": [42]}]`,
		"not json":      `<html>`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewCombined(mapFetcher{"p": body}, "p").Load(context.Background())
			assert.ErrorIs(t, err, fuel.ErrEmptyOrMalformed)
		})
	}
}

func TestCombined_SortsOutOfOrderSnapshots(t *testing.T) {
	body := `[
	  {"timestamp": "2025-06-02T10:00:00Z", "stations": []},
	  {"timestamp": "2025-06-02T08:00:00Z", "stations": []},
	  {"timestamp": "2025-06-02T09:00:00Z", "stations": []}
	]`
	h, err := NewCombined(mapFetcher{"p": body}, "p").Load(context.Background())
	require.NoError(t, err)

	var hours []int
	for _, s := range h.Snapshots {
		hours = append(hours, s.Timestamp.Hour())
	}
	assert.Equal(t, []int{8, 9, 10}, hours)
}

func TestSplit_Load(t *testing.T) {
	src := NewSplit(mapFetcher{
		"prices.json":   splitPricesDoc,
		"stations.json": splitStationsDoc,
	}, "prices.json", "stations.json")

	h, err := src.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, h.Registry, 2)
	assert.Equal(t, "m", h.Registry[0].ID, "registry keeps document order")
	assert.Equal(t, "z", h.Registry[1].ID)
	assert.Equal(t, "7", h.Registry[1].Info.HouseNumber)

	require.Len(t, h.Snapshots, 2)
	first := h.Snapshots[0]
	assert.Equal(t, time.Unix(1748851200, 0).UTC(), first.Timestamp)

	var ids []string
	for _, st := range first.Stations {
		ids = append(ids, st.ID)
	}
	assert.Equal(t, []string{"z", "a", "m"}, ids, "prices keep document order")

	z := first.Stations[0]
	assert.True(t, z.Open)
	assert.Equal(t, "Zapfsäule", z.Info.Name)
	p, ok := z.Price(fuel.KindE5)
	assert.True(t, ok)
	assert.Equal(t, 1.85, p)

	assert.False(t, first.Stations[1].Open)
	_, ok = first.Stations[2].Price(fuel.KindDiesel)
	assert.False(t, ok)

	assert.Equal(t, 500*time.Millisecond, time.Duration(h.Snapshots[1].Timestamp.Nanosecond()))
	assert.Empty(t, h.Snapshots[1].Stations)
}

func TestSplit_EitherDocumentFails(t *testing.T) {
	_, err := NewSplit(mapFetcher{"prices.json": splitPricesDoc}, "prices.json", "stations.json").
		Load(context.Background())
	assert.ErrorIs(t, err, fuel.ErrUnreachable)

	_, err = NewSplit(mapFetcher{"stations.json": splitStationsDoc}, "prices.json", "stations.json").
		Load(context.Background())
	assert.ErrorIs(t, err, fuel.ErrUnreachable)

	_, err = NewSplit(mapFetcher{"prices.json": splitPricesDoc, "stations.json": `null`}, "prices.json", "stations.json").
		Load(context.Background())
	assert.ErrorIs(t, err, fuel.ErrEmptyOrMalformed)
}

// barrierFetcher holds every Fetch until all expected documents have been
// requested, so it only succeeds when the requests are in flight together.
type barrierFetcher struct {
	bodies map[string]string
	fail   string

	mu        sync.Mutex
	arrived   map[string]bool
	all       chan struct{}
	cancelled atomic.Bool
}

func newBarrierFetcher(bodies map[string]string, fail string) *barrierFetcher {
	return &barrierFetcher{
		bodies:  bodies,
		fail:    fail,
		arrived: make(map[string]bool),
		all:     make(chan struct{}),
	}
}

func (f *barrierFetcher) Name() string { return "barrier" }

func (f *barrierFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if name == f.fail {
		return nil, fmt.Errorf("%w: %s", fuel.ErrUnreachable, name)
	}

	f.mu.Lock()
	f.arrived[name] = true
	if len(f.arrived) == len(f.bodies) {
		close(f.all)
	}
	f.mu.Unlock()

	select {
	case <-f.all:
		return []byte(f.bodies[name]), nil
	case <-ctx.Done():
		f.cancelled.Store(true)
		return nil, ctx.Err()
	case <-time.After(2 * time.Second):
		return nil, errors.New("timed out waiting for the other request")
	}
}

func TestSplit_RequestsBothDocumentsConcurrently(t *testing.T) {
	f := newBarrierFetcher(map[string]string{
		"prices.json":   splitPricesDoc,
		"stations.json": splitStationsDoc,
	}, "")

	h, err := NewSplit(f, "prices.json", "stations.json").Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, h.Snapshots, 2)
	assert.Len(t, h.Registry, 2)
}

func TestSplit_FailureCancelsPendingRequest(t *testing.T) {
	f := newBarrierFetcher(map[string]string{
		"prices.json":   splitPricesDoc,
		"stations.json": splitStationsDoc,
	}, "stations.json")

	start := time.Now()
	_, err := NewSplit(f, "prices.json", "stations.json").Load(context.Background())
	assert.ErrorIs(t, err, fuel.ErrUnreachable)
	assert.True(t, f.cancelled.Load(), "pending request sees the cancelled context")
	assert.Less(t, time.Since(start), time.Second)
}

func TestHTTPFetcher_BypassesCaches(t *testing.T) {
	var seen atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Add(1)
		assert.Equal(t, "/data/prices.json", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("_"))
		assert.Contains(t, r.Header.Get("Cache-Control"), "no-cache")
		assert.Equal(t, "no-cache", r.Header.Get("Pragma"))
		_, _ = w.Write([]byte(combinedDoc))
	}))
	defer srv.Close()

	src := NewCombined(NewHTTPFetcher(srv.Client(), srv.URL+"/data", 0), "prices.json")
	h, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, h.Snapshots, 2)
	assert.Equal(t, int32(1), seen.Load())
}

func TestHTTPFetcher_NonSuccessStatusIsUnreachable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewCombined(NewHTTPFetcher(srv.Client(), srv.URL, 0), "prices.json").Load(context.Background())
	assert.ErrorIs(t, err, fuel.ErrUnreachable)
	assert.Equal(t, int32(1), calls.Load(), "no retry by default")
}

func TestHTTPFetcher_RetriesWhenConfigured(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(combinedDoc))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), srv.URL, 1)
	f.httpCfg.Backoff.InitialInterval = time.Millisecond

	_, err := NewCombined(f, "prices.json").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDirFetcher(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prices.json"), []byte(splitPricesDoc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stations.json"), []byte(splitStationsDoc), 0o644))

	src, err := New(LayoutSplit, NewDirFetcher(dir), "prices.json", "stations.json")
	require.NoError(t, err)
	h, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, h.Snapshots, 2)

	_, err = NewDirFetcher(t.TempDir()).Fetch(context.Background(), "prices.json")
	assert.ErrorIs(t, err, fuel.ErrUnreachable)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewDirFetcher(dir).Fetch(ctx, "prices.json")
	assert.ErrorIs(t, err, fuel.ErrUnreachable)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = New("xml", NewDirFetcher(dir), "prices.json", "stations.json")
	assert.Error(t, err)
}

package fuel

import (
	"strings"
	"time"

	"github.com/annedoesstuff/budgetBenzin/internal/common"
)

// Kind is the selectable fuel price category.
type Kind string

const (
	KindDiesel Kind = "diesel"
	KindE5     Kind = "e5"
	KindE10    Kind = "e10"
)

// Kinds lists every supported fuel kind in display order.
var Kinds = []Kind{KindDiesel, KindE5, KindE10}

// ParseKind returns the Kind for s and whether it is supported.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Label is the upper-cased kind as shown to users.
func (k Kind) Label() string {
	return strings.ToUpper(string(k))
}

// DefaultBrand is shown for stations that do not belong to a brand.
const DefaultBrand = "Freie Tankstelle"

// StationInfo holds the static attributes of a station.
type StationInfo struct {
	Brand       string `json:"brand,omitempty"`
	Name        string `json:"name,omitempty"`
	Street      string `json:"street"`
	HouseNumber string `json:"houseNumber"`
	PostCode    string `json:"postCode"`
	Place       string `json:"place"`
}

// Label is the card heading: the brand, or DefaultBrand for unbranded stations.
func (i StationInfo) Label() string {
	return common.FirstNonEmpty(i.Brand, DefaultBrand)
}

// StationReading is one station's status and prices within a snapshot.
// Prices only contains fields that were numeric in the source document.
type StationReading struct {
	ID     string
	Info   StationInfo
	Open   bool
	Prices map[Kind]float64
}

// Price returns the reading's price for kind if it is valid: the station is
// open and the price is present and strictly positive.
func (r StationReading) Price(kind Kind) (float64, bool) {
	if !r.Open {
		return 0, false
	}
	p, ok := r.Prices[kind]
	if !ok || p <= 0 {
		return 0, false
	}
	return p, true
}

// Snapshot is one observation of all stations at a point in time.
type Snapshot struct {
	Timestamp time.Time
	Stations  []StationReading
}

// RegistryEntry is one station of the separately published station registry.
type RegistryEntry struct {
	ID   string
	Info StationInfo
}

// History is the chronologically ordered snapshot list of a session, plus the
// station registry when the data was published in the split layout.
// A History is never mutated once it has been published in a Session.
type History struct {
	Snapshots []Snapshot
	Registry  []RegistryEntry
}

// Latest returns the most recent snapshot.
func (h History) Latest() (Snapshot, bool) {
	if len(h.Snapshots) == 0 {
		return Snapshot{}, false
	}
	return h.Snapshots[len(h.Snapshots)-1], true
}

// Session is the state owned by one successful load.
type Session struct {
	ID       string    `json:"id"`
	LoadedAt time.Time `json:"loadedAt"`
	History  History   `json:"-"`
}

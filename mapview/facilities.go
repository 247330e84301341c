// Package mapview drives the facility layer of the report map: viewport
// changes are debounced before querying the facility source, fetches are
// skipped when zoomed out too far, and results are deduplicated by rounded
// coordinates.
package mapview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/golang/geo/s2"
)

const (
	// DefaultDebounce coalesces pan/zoom bursts into one fetch.
	DefaultDebounce = 500 * time.Millisecond

	// DefaultMinFetchZoom gates fetches: zoomed out past this level the
	// viewport covers too many facilities to be worth querying.
	DefaultMinFetchZoom = 12

	fetchTimeout = 10 * time.Second

	earthRadiusMeters = 6371010.0
)

// Viewport is the visible map area plus the current zoom level.
type Viewport struct {
	LatMin float64 `json:"latmin"`
	LonMin float64 `json:"lonmin"`
	LatMax float64 `json:"latmax"`
	LonMax float64 `json:"lonmax"`
	Zoom   int     `json:"zoom"`
}

// Facility is one public-service facility shown on the map.
type Facility struct {
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Source is the facility database queried per viewport.
type Source interface {
	FacilitiesInViewport(ctx context.Context, vp Viewport) ([]Facility, error)
}

// Fetcher debounces viewport changes and pushes deduplicated facility sets to
// its callback.
type Fetcher struct {
	source   Source
	onResult func([]Facility)
	debounce time.Duration
	minZoom  int

	mu     sync.Mutex
	timer  *time.Timer
	latest Viewport
}

// NewFetcher builds a fetcher. Zero debounce and minZoom pick the defaults.
func NewFetcher(source Source, onResult func([]Facility), debounce time.Duration, minZoom int) *Fetcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if minZoom <= 0 {
		minZoom = DefaultMinFetchZoom
	}
	return &Fetcher{
		source:   source,
		onResult: onResult,
		debounce: debounce,
		minZoom:  minZoom,
	}
}

// ViewportChanged records the new viewport and restarts the debounce timer.
// Only the last viewport of a burst is fetched.
func (f *Fetcher) ViewportChanged(vp Viewport) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest = vp
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.debounce, f.fire)
}

func (f *Fetcher) fire() {
	f.mu.Lock()
	vp := f.latest
	f.mu.Unlock()

	if vp.Zoom < f.minZoom {
		log.Debugf("Skipping facility fetch at zoom %d (< %d)", vp.Zoom, f.minZoom)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	facilities, err := f.source.FacilitiesInViewport(ctx, vp)
	if err != nil {
		log.Errorf("Failed to fetch facilities for viewport: %v", err)
		return
	}
	f.onResult(Dedupe(facilities))
}

// DedupeKey keys a facility by its coordinates rounded to 4 decimal places
// (roughly 11m), which collapses duplicate entries from the source.
func DedupeKey(lat, lng float64) string {
	return fmt.Sprintf("%.4f:%.4f", lat, lng)
}

// Dedupe drops facilities whose rounded coordinates were already seen,
// keeping the first occurrence.
func Dedupe(facilities []Facility) []Facility {
	seen := make(map[string]bool, len(facilities))
	out := make([]Facility, 0, len(facilities))
	for _, fac := range facilities {
		key := DedupeKey(fac.Latitude, fac.Longitude)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, fac)
	}
	return out
}

// DistanceMeters is the great-circle distance between two points.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lng1)
	p2 := s2.LatLngFromDegrees(lat2, lng2)
	return p1.Distance(p2).Radians() * earthRadiusMeters
}

package mapview

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"
)

type fakeSource struct {
	mu        sync.Mutex
	viewports []Viewport
	result    []Facility
	err       error
}

func (f *fakeSource) FacilitiesInViewport(ctx context.Context, vp Viewport) ([]Facility, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewports = append(f.viewports, vp)
	return f.result, f.err
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.viewports)
}

func (f *fakeSource) lastViewport() Viewport {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewports[len(f.viewports)-1]
}

type resultSink struct {
	mu      sync.Mutex
	batches [][]Facility
}

func (s *resultSink) accept(facilities []Facility) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, facilities)
}

func (s *resultSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func viewportAt(zoom int, n float64) Viewport {
	return Viewport{
		LatMin: -23.60 + n,
		LonMin: -46.70 + n,
		LatMax: -23.50 + n,
		LonMax: -46.60 + n,
		Zoom:   zoom,
	}
}

func TestDedupeKey(t *testing.T) {
	testCases := []struct {
		name     string
		lat, lng float64
		expected string
	}{
		{name: "Plain", lat: -23.5505, lng: -46.6333, expected: "-23.5505:-46.6333"},
		{name: "Rounded down", lat: -23.55054, lng: -46.63334, expected: "-23.5505:-46.6333"},
		{name: "Rounded up", lat: -23.55046, lng: -46.63326, expected: "-23.5505:-46.6333"},
		{name: "Zero", lat: 0, lng: 0, expected: "0.0000:0.0000"},
	}

	for _, testCase := range testCases {
		if got := DedupeKey(testCase.lat, testCase.lng); got != testCase.expected {
			t.Errorf("%s: got %q, expected %q", testCase.name, got, testCase.expected)
		}
	}
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	facilities := []Facility{
		{Name: "Health post A", Latitude: -23.55051, Longitude: -46.63331},
		{Name: "Health post A (dup)", Latitude: -23.55049, Longitude: -46.63329},
		{Name: "School B", Latitude: -23.56, Longitude: -46.64},
	}

	out := Dedupe(facilities)
	if len(out) != 2 {
		t.Fatalf("Expected 2 facilities after dedupe, got %d", len(out))
	}
	if out[0].Name != "Health post A" || out[1].Name != "School B" {
		t.Errorf("Dedupe must keep the first occurrence, got %v", out)
	}
}

func TestDedupeEmpty(t *testing.T) {
	if out := Dedupe(nil); len(out) != 0 {
		t.Errorf("Expected an empty result, got %v", out)
	}
}

func TestDebounceCoalescesBurst(t *testing.T) {
	source := &fakeSource{result: []Facility{{Name: "X", Latitude: 1, Longitude: 1}}}
	sink := &resultSink{}
	fetcher := NewFetcher(source, sink.accept, 30*time.Millisecond, DefaultMinFetchZoom)

	// A pan burst: five viewport changes inside the debounce window.
	for i := 0; i < 5; i++ {
		fetcher.ViewportChanged(viewportAt(14, float64(i)/100))
		time.Sleep(2 * time.Millisecond)
	}

	waitForCount(t, sink.count, 1, "the debounced fetch")
	if got := source.callCount(); got != 1 {
		t.Fatalf("Expected exactly 1 fetch for the burst, got %d", got)
	}
	if last := source.lastViewport(); last.LatMin != viewportAt(14, 0.04).LatMin {
		t.Errorf("Expected the last viewport of the burst, got %+v", last)
	}
}

func TestSeparateBurstsFetchSeparately(t *testing.T) {
	source := &fakeSource{}
	sink := &resultSink{}
	fetcher := NewFetcher(source, sink.accept, 10*time.Millisecond, DefaultMinFetchZoom)

	fetcher.ViewportChanged(viewportAt(14, 0))
	waitForCount(t, sink.count, 1, "the first fetch")

	fetcher.ViewportChanged(viewportAt(14, 0.5))
	waitForCount(t, sink.count, 2, "the second fetch")

	if got := source.callCount(); got != 2 {
		t.Errorf("Expected 2 fetches, got %d", got)
	}
}

func TestZoomGateSkipsFetch(t *testing.T) {
	source := &fakeSource{}
	sink := &resultSink{}
	fetcher := NewFetcher(source, sink.accept, 10*time.Millisecond, DefaultMinFetchZoom)

	fetcher.ViewportChanged(viewportAt(DefaultMinFetchZoom-1, 0))
	time.Sleep(60 * time.Millisecond)

	if got := source.callCount(); got != 0 {
		t.Errorf("Zoomed-out viewport must not be fetched, got %d calls", got)
	}
	if got := sink.count(); got != 0 {
		t.Errorf("Expected no results, got %d batches", got)
	}
}

func TestZoomAtThresholdFetches(t *testing.T) {
	source := &fakeSource{}
	sink := &resultSink{}
	fetcher := NewFetcher(source, sink.accept, 10*time.Millisecond, DefaultMinFetchZoom)

	fetcher.ViewportChanged(viewportAt(DefaultMinFetchZoom, 0))
	waitForCount(t, sink.count, 1, "the threshold fetch")
}

func TestSourceErrorDropsResult(t *testing.T) {
	source := &fakeSource{err: fmt.Errorf("db gone")}
	sink := &resultSink{}
	fetcher := NewFetcher(source, sink.accept, 10*time.Millisecond, DefaultMinFetchZoom)

	fetcher.ViewportChanged(viewportAt(14, 0))
	waitForCount(t, source.callCount, 1, "the failing fetch")
	time.Sleep(20 * time.Millisecond)

	if got := sink.count(); got != 0 {
		t.Errorf("A failed fetch must not reach the callback, got %d batches", got)
	}
}

func TestResultsAreDeduplicated(t *testing.T) {
	source := &fakeSource{result: []Facility{
		{Name: "A", Latitude: -23.55051, Longitude: -46.63331},
		{Name: "A dup", Latitude: -23.55049, Longitude: -46.63329},
	}}
	sink := &resultSink{}
	fetcher := NewFetcher(source, sink.accept, 10*time.Millisecond, DefaultMinFetchZoom)

	fetcher.ViewportChanged(viewportAt(14, 0))
	waitForCount(t, sink.count, 1, "the fetch")

	sink.mu.Lock()
	batch := sink.batches[0]
	sink.mu.Unlock()
	if len(batch) != 1 {
		t.Errorf("Expected the duplicate to be collapsed, got %v", batch)
	}
}

func TestDistanceMeters(t *testing.T) {
	// Praça da Sé to Av. Paulista, roughly 2.3 km.
	d := DistanceMeters(-23.5503, -46.6339, -23.5614, -46.6559)
	if d < 2000 || d > 3000 {
		t.Errorf("Expected roughly 2.3km, got %.0fm", d)
	}

	if d := DistanceMeters(10, 20, 10, 20); math.Abs(d) > 0.001 {
		t.Errorf("Distance to self must be zero, got %f", d)
	}
}

func waitForCount(t *testing.T, count func() int, want int, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if count() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

package ports

import (
	"fmt"
	"sync"

	"github.com/golang/geo/s2"

	"vesseltrack/internal/catalog"
	"vesseltrack/internal/domain"
)

// EarthRadiusKm is Earth's mean radius in kilometres.
const EarthRadiusKm = 6371.0

// defaultMaxEntries bounds the proximity cache. Keys are coordinates rounded
// to three decimals (~111 m), so a bounded cache covers a vessel's working
// area comfortably; beyond the cap the oldest entry is evicted.
const defaultMaxEntries = 10000

// HaversineKm returns the great-circle distance between two coordinates in
// kilometres.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// Analyzer computes distances from a coordinate to every configured port and
// reports the nearest. Results are cached by rounded coordinate; the cache is
// an optimization only — Analyze is deterministic for a given rounded input.
// Safe for concurrent use.
type Analyzer struct {
	ports []catalog.Port

	mu         sync.Mutex
	cache      map[string]*domain.PortAnalysis
	order      []string
	maxEntries int
}

func NewAnalyzer(ports []catalog.Port) *Analyzer {
	return &Analyzer{
		ports:      ports,
		cache:      make(map[string]*domain.PortAnalysis),
		maxEntries: defaultMaxEntries,
	}
}

// Analyze returns per-port distances from the given coordinate plus the
// nearest port. The returned value is shared with the cache and must be
// treated as read-only.
func (a *Analyzer) Analyze(lat, lon float64) *domain.PortAnalysis {
	key := cacheKey(lat, lon)

	a.mu.Lock()
	defer a.mu.Unlock()

	if hit, ok := a.cache[key]; ok {
		return hit
	}

	analysis := &domain.PortAnalysis{
		Distances: make(map[string]float64, len(a.ports)),
	}
	for i, p := range a.ports {
		d := HaversineKm(lat, lon, p.Lat, p.Lon)
		analysis.Distances[p.Name] = d
		if i == 0 || d < analysis.NearestDistance {
			analysis.NearestPort = p.Name
			analysis.NearestDistance = d
		}
	}

	if len(a.cache) >= a.maxEntries {
		oldest := a.order[0]
		a.order = a.order[1:]
		delete(a.cache, oldest)
	}
	a.cache[key] = analysis
	a.order = append(a.order, key)

	return analysis
}

// Reset clears the cache; runs that must be fully independent call this
// between invocations.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache = make(map[string]*domain.PortAnalysis)
	a.order = nil
}

// CacheSize returns the number of cached coordinate entries.
func (a *Analyzer) CacheSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.cache)
}

func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.3f,%.3f", lat, lon)
}

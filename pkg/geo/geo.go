// Package geo implements great-circle distance and radius queries over
// anything that exposes a (latitude, longitude) pair.
package geo

import (
	"fmt"
	"math"
	"sort"
)

const (
	// EarthRadiusMiles is the sphere radius used by Distance.
	EarthRadiusMiles = 3959.0

	// DefaultRadiusMiles bounds recipient matching and geo listing when no
	// radius is given.
	DefaultRadiusMiles = 50.0
)

type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks lon ∈ [-180,180] and lat ∈ [-90,90].
func (p Point) Validate() error {
	if math.IsNaN(p.Latitude) || p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", p.Latitude)
	}
	if math.IsNaN(p.Longitude) || p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", p.Longitude)
	}
	return nil
}

// Locatable is implemented by entities with stored coordinates.
type Locatable interface {
	Coordinates() (lat float64, lon float64)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Distance returns the haversine distance in miles between two points.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMiles * c
}

// UnitVector returns p as a point on the unit sphere. The dot product of two
// such vectors is the cosine of their central angle, so sorting by it
// descending orders points exactly by great-circle distance.
func (p Point) UnitVector() (x, y, z float64) {
	lat, lon := toRadians(p.Latitude), toRadians(p.Longitude)
	return math.Cos(lat) * math.Cos(lon), math.Cos(lat) * math.Sin(lon), math.Sin(lat)
}

// DistanceTo is Distance from p to l.
func (p Point) DistanceTo(l Locatable) float64 {
	lat, lon := l.Coordinates()
	return Distance(p.Latitude, p.Longitude, lat, lon)
}

// Match pairs an item with its distance from the query point.
type Match[T Locatable] struct {
	Item     T
	Distance float64
}

// FindNearby keeps the items within radiusMiles of center (inclusive) that
// satisfy pred, sorted nearest first. A limit > 0 keeps only the nearest limit
// matches. A nil pred accepts everything.
func FindNearby[T Locatable](items []T, center Point, radiusMiles float64, pred func(T) bool, limit int) []Match[T] {
	matches := make([]Match[T], 0, len(items))
	for _, item := range items {
		if pred != nil && !pred(item) {
			continue
		}
		d := center.DistanceTo(item)
		if d > radiusMiles {
			continue
		}
		matches = append(matches, Match[T]{Item: item, Distance: d})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

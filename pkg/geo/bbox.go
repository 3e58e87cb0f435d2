package geo

import "math"

// milesPerDegreeLat is the length of one degree of latitude on the
// EarthRadiusMiles sphere.
const milesPerDegreeLat = EarthRadiusMiles * math.Pi / 180

// BoundingBox is a lat/lon rectangle that contains every point within a
// radius of its center. Repositories use it to narrow candidates in SQL before
// FindNearby applies the exact distance.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
	// SpansAllLongitudes is set near the poles and across the antimeridian,
	// where no longitude clause should be applied.
	SpansAllLongitudes bool
}

func BoundingBoxFor(center Point, radiusMiles float64) BoundingBox {
	// pad so points exactly on the radius survive float rounding
	radiusMiles *= 1.01
	dLat := radiusMiles / milesPerDegreeLat
	box := BoundingBox{
		MinLat: math.Max(center.Latitude-dLat, -90),
		MaxLat: math.Min(center.Latitude+dLat, 90),
	}

	if box.MinLat <= -90 || box.MaxLat >= 90 {
		box.SpansAllLongitudes = true
		box.MinLon, box.MaxLon = -180, 180
		return box
	}

	// widest parallel inside the box bounds the longitude delta
	maxAbsLat := math.Max(math.Abs(box.MinLat), math.Abs(box.MaxLat))
	dLon := radiusMiles / (milesPerDegreeLat * math.Cos(toRadians(maxAbsLat)))
	box.MinLon = center.Longitude - dLon
	box.MaxLon = center.Longitude + dLon
	if dLon >= 180 || box.MinLon < -180 || box.MaxLon > 180 {
		box.SpansAllLongitudes = true
		box.MinLon, box.MaxLon = -180, 180
	}
	return box
}

func (b BoundingBox) Contains(p Point) bool {
	if p.Latitude < b.MinLat || p.Latitude > b.MaxLat {
		return false
	}
	if b.SpansAllLongitudes {
		return true
	}
	return p.Longitude >= b.MinLon && p.Longitude <= b.MaxLon
}

package entities

import (
	"FoodShare-Backend/pkg/geo"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GeoVector stores a row's coordinates on the unit sphere so storage can rank
// rows by great-circle distance with plain arithmetic. It must be written
// together with latitude and longitude; see LocationColumns.
type GeoVector struct {
	GeoX float64 `gorm:"column:geo_x;not null;default:0" json:"-"`
	GeoY float64 `gorm:"column:geo_y;not null;default:0" json:"-"`
	GeoZ float64 `gorm:"column:geo_z;not null;default:0" json:"-"`
}

func NewGeoVector(lat, lon float64) GeoVector {
	x, y, z := geo.Point{Latitude: lat, Longitude: lon}.UnitVector()
	return GeoVector{GeoX: x, GeoY: y, GeoZ: z}
}

// LocationColumns is the update map for moving a row to (lat, lon).
func LocationColumns(lat, lon float64) map[string]any {
	v := NewGeoVector(lat, lon)
	return map[string]any{
		"latitude":  lat,
		"longitude": lon,
		"geo_x":     v.GeoX,
		"geo_y":     v.GeoY,
		"geo_z":     v.GeoZ,
	}
}

// NearestFirst orders rows by exact great-circle distance from center,
// nearest first, across the antimeridian and near the poles alike.
func NearestFirst(center geo.Point) clause.OrderBy {
	x, y, z := center.UnitVector()
	return clause.OrderBy{Expression: clause.Expr{
		SQL:                "geo_x * ? + geo_y * ? + geo_z * ? DESC, id",
		Vars:               []any{x, y, z},
		WithoutParentheses: true,
	}}
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.GeoVector = NewGeoVector(u.Latitude, u.Longitude)
	return nil
}

func (d *Donation) BeforeCreate(tx *gorm.DB) error {
	d.GeoVector = NewGeoVector(d.Latitude, d.Longitude)
	return nil
}

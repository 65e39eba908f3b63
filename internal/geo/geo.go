// Package geo provides the coordinate and search-area value types used to
// query the repeater directory by circular zone.
package geo

import (
	"math"

	"github.com/ogdrb/ogdrb/internal/errors"
)

// EarthRadiusKm is the mean Earth radius used for all distance math.
const EarthRadiusKm = 6371.0

// Unit is a supported unit of length for search radii.
type Unit string

const (
	Kilometers Unit = "km"
	Miles      Unit = "mi"
)

const kmPerMile = 1.609344

// Kilometers converts a distance in this unit to kilometers.
func (u Unit) Kilometers(distance float64) (float64, error) {
	switch u {
	case Kilometers:
		return distance, nil
	case Miles:
		return distance * kmPerMile, nil
	default:
		return 0, errors.Newf("unsupported length unit: %q", string(u)).
			Category(errors.CategoryValidation).
			Component("geo").
			Build()
	}
}

// Coordinate is an immutable WGS84 position in decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Validate checks that the coordinate is within the valid WGS84 range.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) ||
		c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return errors.Newf("coordinate out of range: lat=%f lon=%f", c.Lat, c.Lon).
			Category(errors.CategoryValidation).
			Component("geo").
			Build()
	}
	return nil
}

// DistanceKm returns the great-circle distance to other in kilometers,
// computed with the haversine formula.
func (c Coordinate) DistanceKm(other Coordinate) float64 {
	lat1 := c.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - c.Lat) * math.Pi / 180
	dLon := (other.Lon - c.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

// SearchArea is a circular query area: center, radius and length unit.
// It is used only as a query parameter and never persisted.
type SearchArea struct {
	Center Coordinate
	Radius float64
	Unit   Unit
}

// Validate checks the area's coordinate, radius and unit.
func (a SearchArea) Validate() error {
	if err := a.Center.Validate(); err != nil {
		return err
	}
	if a.Radius <= 0 || math.IsNaN(a.Radius) || math.IsInf(a.Radius, 0) {
		return errors.Newf("search radius must be positive, got %f", a.Radius).
			Category(errors.CategoryValidation).
			Component("geo").
			Build()
	}
	if _, err := a.Unit.Kilometers(a.Radius); err != nil {
		return err
	}
	return nil
}

// RadiusKm returns the radius converted to kilometers.
func (a SearchArea) RadiusKm() (float64, error) {
	return a.Unit.Kilometers(a.Radius)
}

// Contains reports whether the coordinate lies within the area. The area
// must be valid; an invalid unit reports false.
func (a SearchArea) Contains(c Coordinate) bool {
	radiusKm, err := a.RadiusKm()
	if err != nil {
		return false
	}
	return a.Center.DistanceKm(c) <= radiusKm
}

// BoundingBox is an axis-aligned lat/lon rectangle enclosing a search area.
// Used to pre-filter database queries before the exact radius check.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
	// Wraps is set when the box crosses the antimeridian, in which case the
	// longitude match is lon >= MinLon OR lon <= MaxLon.
	Wraps bool
}

// Bounds returns the bounding box of the area. Latitude is clamped to the
// poles; near the poles the box spans all longitudes.
func (a SearchArea) Bounds() (BoundingBox, error) {
	radiusKm, err := a.RadiusKm()
	if err != nil {
		return BoundingBox{}, err
	}

	dLat := radiusKm / EarthRadiusKm * 180 / math.Pi
	box := BoundingBox{
		MinLat: a.Center.Lat - dLat,
		MaxLat: a.Center.Lat + dLat,
	}

	if box.MinLat <= -90 || box.MaxLat >= 90 {
		// A box touching a pole covers every longitude.
		box.MinLat = math.Max(box.MinLat, -90)
		box.MaxLat = math.Min(box.MaxLat, 90)
		box.MinLon = -180
		box.MaxLon = 180
		return box, nil
	}

	dLon := dLat / math.Cos(a.Center.Lat*math.Pi/180)
	box.MinLon = a.Center.Lon - dLon
	box.MaxLon = a.Center.Lon + dLon

	if box.MinLon < -180 {
		box.MinLon += 360
		box.Wraps = true
	}
	if box.MaxLon > 180 {
		box.MaxLon -= 360
		box.Wraps = true
	}

	return box, nil
}

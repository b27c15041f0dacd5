package models

import (
	"fmt"
	"strconv"
)

// Coordinate is an immutable WGS84 point in degrees.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Validate checks that the coordinate lies within the valid latitude and longitude ranges.
func (c Coordinate) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("invalid latitude: %f", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("invalid longitude: %f", c.Longitude)
	}
	return nil
}

// String formats the coordinate as "lat,lng", the form directions and geocoding endpoints expect.
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// Ptr returns a pointer to a copy of c.
func (c Coordinate) Ptr() *Coordinate {
	return &c
}

// SameCoordinate reports whether a and b are both absent or both present and equal.
func SameCoordinate(a, b *Coordinate) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

package models

import "strings"

// Location is a place record held in the local PostGIS catalogue, with its address
// components and its precise geographic coordinates.
type Location struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Street       string  `json:"street"`
	HouseNumber  string  `json:"house_number"`
	Postcode     string  `json:"postcode"`
	Municipality string  `json:"municipality"`
	Region       string  `json:"region"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// Label joins the non-empty address parts into a single display line.
func (l Location) Label() string {
	street := strings.TrimSpace(strings.Join([]string{l.Street, l.HouseNumber}, " "))
	town := strings.TrimSpace(strings.Join([]string{l.Postcode, l.Municipality}, " "))

	parts := make([]string, 0, 4)
	for _, p := range []string{l.Name, street, town, l.Region} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Coordinate returns the record's position.
func (l Location) Coordinate() Coordinate {
	return Coordinate{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Package polyline decodes and encodes routes in the encoded polyline format:
// zig-zag signed deltas split into 5-bit groups, offset by 63, with 0x20 as the
// continuation bit and a scale of 1e5.
package polyline

import (
	"fmt"
	"math"

	"findway/internal/models"
)

const (
	scale        = 1e5
	chunkOffset  = 63
	continuation = 0x20
	chunkMask    = 0x1f
	// A 32-bit delta never needs more than seven 5-bit groups.
	maxShift = 35
)

// DecodeError reports malformed input: a value ran past the end of the string,
// a byte outside the encoding alphabet, or an over-long value.
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("polyline: %s at offset %d", e.Reason, e.Offset)
}

// Decode turns an encoded polyline into its ordered coordinates. An empty string
// decodes to an empty path.
func Decode(encoded string) (models.RoutePath, error) {
	path := models.RoutePath{}
	index, lat, lng := 0, 0, 0

	for index < len(encoded) {
		dlat, next, err := decodeValue(encoded, index)
		if err != nil {
			return nil, err
		}
		dlng, next, err := decodeValue(encoded, next)
		if err != nil {
			return nil, err
		}
		index = next
		lat += dlat
		lng += dlng

		path = append(path, models.Coordinate{
			Latitude:  float64(lat) / scale,
			Longitude: float64(lng) / scale,
		})
	}

	return path, nil
}

func decodeValue(encoded string, index int) (int, int, error) {
	result, shift := 0, 0
	for {
		if index >= len(encoded) {
			return 0, index, &DecodeError{Offset: index, Reason: "unexpected end of input"}
		}
		if shift >= maxShift {
			return 0, index, &DecodeError{Offset: index, Reason: "value too long"}
		}
		b := int(encoded[index]) - chunkOffset
		if b < 0 || b > 0x3f {
			return 0, index, &DecodeError{Offset: index, Reason: fmt.Sprintf("invalid character %q", encoded[index])}
		}
		index++
		result |= (b & chunkMask) << shift
		shift += 5
		if b < continuation {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), index, nil
	}
	return result >> 1, index, nil
}

// Encode is the inverse of Decode at 1e-5 degree precision.
func Encode(path models.RoutePath) string {
	buf := make([]byte, 0, len(path)*8)
	prevLat, prevLng := 0, 0

	for _, c := range path {
		lat := int(math.Round(c.Latitude * scale))
		lng := int(math.Round(c.Longitude * scale))
		buf = appendValue(buf, lat-prevLat)
		buf = appendValue(buf, lng-prevLng)
		prevLat, prevLng = lat, lng
	}

	return string(buf)
}

func appendValue(buf []byte, v int) []byte {
	u := v << 1
	if v < 0 {
		u = ^u
	}
	for u >= continuation {
		buf = append(buf, byte((continuation|(u&chunkMask))+chunkOffset))
		u >>= 5
	}
	return append(buf, byte(u+chunkOffset))
}

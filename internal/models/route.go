package models

// RoutePath is an ordered polyline; its last point is the route's destination end.
type RoutePath []Coordinate

// Last returns the final point of the path.
func (p RoutePath) Last() (Coordinate, bool) {
	if len(p) == 0 {
		return Coordinate{}, false
	}
	return p[len(p)-1], true
}

// Clone returns a copy that shares no backing array with p.
func (p RoutePath) Clone() RoutePath {
	if p == nil {
		return RoutePath{}
	}
	out := make(RoutePath, len(p))
	copy(out, p)
	return out
}

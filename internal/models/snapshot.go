package models

import "fmt"

// Phase is the navigation phase derived from the snapshot fields.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePreviewing
	PhaseGuiding
	PhaseRerouting
)

var phaseNames = [...]string{"idle", "previewing", "guiding", "rerouting"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// MarshalText renders the phase by name in JSON payloads.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// DefaultZoom is the map zoom used whenever the camera is moved by the engine.
const DefaultZoom = 15

// Camera is where the rendering layer should point the map.
type Camera struct {
	Target Coordinate `json:"target"`
	Zoom   float64    `json:"zoom"`
}

// NavigationSnapshot is the complete view state handed to the rendering layer.
// A snapshot is never mutated after it has been published.
type NavigationSnapshot struct {
	Version         uint64            `json:"version"`
	Phase           Phase             `json:"phase"`
	CurrentLocation *Coordinate       `json:"current_location,omitempty"`
	Origin          *Coordinate       `json:"origin,omitempty"`
	Destination     *Coordinate       `json:"destination,omitempty"`
	SelectedPlace   *SelectedPlace    `json:"selected_place,omitempty"`
	Suggestions     []PlaceSuggestion `json:"suggestions"`
	Route           RoutePath         `json:"route"`
	GuidanceActive  bool              `json:"guidance_active"`
	ShowStartMarker bool              `json:"show_start_marker"`
	Camera          *Camera           `json:"camera,omitempty"`
}

// NewNavigationSnapshot returns the session's initial, all-absent state.
func NewNavigationSnapshot() NavigationSnapshot {
	return NavigationSnapshot{
		Phase:           PhaseIdle,
		Suggestions:     []PlaceSuggestion{},
		Route:           RoutePath{},
		ShowStartMarker: true,
	}
}

// Clone returns a deep copy of s.
func (s NavigationSnapshot) Clone() NavigationSnapshot {
	out := s
	if s.CurrentLocation != nil {
		out.CurrentLocation = s.CurrentLocation.Ptr()
	}
	if s.Origin != nil {
		out.Origin = s.Origin.Ptr()
	}
	if s.Destination != nil {
		out.Destination = s.Destination.Ptr()
	}
	if s.SelectedPlace != nil {
		sp := *s.SelectedPlace
		out.SelectedPlace = &sp
	}
	if s.Camera != nil {
		cam := *s.Camera
		out.Camera = &cam
	}
	out.Suggestions = make([]PlaceSuggestion, len(s.Suggestions))
	copy(out.Suggestions, s.Suggestions)
	out.Route = s.Route.Clone()
	return out
}

package models

// PlaceSuggestion is an autocomplete candidate that has not been resolved to a coordinate yet.
type PlaceSuggestion struct {
	ID          string `json:"id"`
	DisplayText string `json:"display_text"`
}

// Place is a resolved point of interest as returned by a details or reverse-geocode provider.
type Place struct {
	Coordinate Coordinate `json:"coordinate"`
	Address    string     `json:"address"`
}

// SelectedPlace is a tapped or searched place shown to the user. While
// AwaitingConfirmation is set it is a candidate destination; after confirmation
// the position stays for display only.
type SelectedPlace struct {
	Coordinate           Coordinate `json:"coordinate"`
	DisplayName          string     `json:"display_name"`
	AwaitingConfirmation bool       `json:"awaiting_confirmation"`
}

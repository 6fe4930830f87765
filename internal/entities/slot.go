package entities

// Slot is a single bookable interval for a given date. Derived on every
// request, never persisted.
type Slot struct {
	Time      string `json:"time"` // "HH:MM"
	Available bool   `json:"available"`
}

type SlotsResponse struct {
	Date  string `json:"date"`
	Slots []Slot `json:"slots"`
}

type DateSelectableResponse struct {
	Date       string `json:"date"`
	Selectable bool   `json:"selectable"`
}

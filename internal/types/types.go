// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, the service layer and storage can all import types without
// depending on each other.
package types

// Student represents a student record in our system.
//
// ID is assigned by the store when the record is first saved and never
// changes afterwards. A zero ID means "not persisted yet".
//
// The json:"..." tags control the key names used by the REST API.
type Student struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Published   bool   `json:"published"`
}

// IsNew reports whether the record has not been assigned an id yet.
func (s Student) IsNew() bool {
	return s.ID == 0
}

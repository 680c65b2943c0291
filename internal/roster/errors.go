package roster

import "fmt"

// LockedRosterError is returned when an edit is attempted outside an open
// change window or after the window's quota is spent.
type LockedRosterError struct {
	Reason string
	Window string
}

func (e *LockedRosterError) Error() string {
	if e.Window != "" {
		return fmt.Sprintf("roster locked: %s (window %q)", e.Reason, e.Window)
	}
	return "roster locked: " + e.Reason
}

// InvalidRosterError is returned when a roster would reference an unknown
// caption or entity, or exceed the season's point cap.
type InvalidRosterError struct {
	Reason string
}

func (e *InvalidRosterError) Error() string { return "invalid roster: " + e.Reason }

// DuplicateNameError is returned when a display name is already taken in
// the season.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("display name %q is already taken", e.Name)
}

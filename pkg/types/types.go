// Package types defines the small set of values shared by the parser
// packages. Each package owns its own result types; only data that crosses
// package boundaries in both directions lives here to avoid import cycles.
package types

// UserMedication is one entry of a user's personal medication list. The
// list is supplied by the caller (or loaded from the store) and is the
// preferred resolution target for spoken medication names.
type UserMedication struct {
	// Name is the display name as the user entered it, e.g. "Sumatriptan 50".
	Name string `json:"name" yaml:"name"`

	// ID is an opaque reference to the caller's medication row. May be empty.
	ID string `json:"medicationId,omitempty" yaml:"id,omitempty"`
}

// MedicationNames returns the names of meds in input order, skipping blanks.
func MedicationNames(meds []UserMedication) []string {
	names := make([]string, 0, len(meds))
	for _, m := range meds {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}
	return names
}

// MedicationByName returns the first medication whose Name equals name.
func MedicationByName(meds []UserMedication, name string) (UserMedication, bool) {
	for _, m := range meds {
		if m.Name == name {
			return m, true
		}
	}
	return UserMedication{}, false
}

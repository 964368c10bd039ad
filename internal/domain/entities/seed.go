package entities

import "time"

// Fixed seed sets. Locations and users are not created at runtime; tasks
// reference them by name, not by id.

// SeedLocations returns the customs facilities known to the tracker.
func SeedLocations() []CustomsLocation {
	return []CustomsLocation{
		{ID: "1", Name: "Aduana de Nuevo Laredo", City: "Tamaulipas", Code: "NL-01"},
		{ID: "2", Name: "Aduana de Tijuana", City: "Baja California", Code: "TJ-02"},
		{ID: "3", Name: "Aduana de Veracruz", City: "Veracruz", Code: "VC-03"},
		{ID: "4", Name: "Aduana del Aeropuerto CDMX", City: "Ciudad de México", Code: "AICM-04"},
	}
}

// SeedUsers returns the fixed maintenance-team roster.
func SeedUsers() []User {
	return []User{
		{ID: "u1", Name: "Carlos Rivera", Role: UserRoleAdmin, Avatar: "https://picsum.photos/seed/carlos/100/100"},
		{ID: "u2", Name: "Ana Martinez", Role: UserRoleManager, Avatar: "https://picsum.photos/seed/ana/100/100"},
		{ID: "u3", Name: "Luis Gomez", Role: UserRoleTechnician, Avatar: "https://picsum.photos/seed/luis/100/100"},
	}
}

// SeedTask returns the sample task persisted on first run, when no prior
// state exists. Dates are derived from now so the task lands on the
// current calendar.
func SeedTask(now time.Time) Task {
	cost := 15000.0
	return Task{
		ID:              "1",
		Title:           "Revisión aire acondicionado central",
		Description:     "Mantenimiento preventivo de los equipos centrales en el ala norte.",
		CustomsLocation: "Aduana de Tijuana",
		Status:          TaskStatusPending,
		StartDate:       now.Format(DateLayout),
		DueDate:         now.Add(72 * time.Hour).Format(DateLayout),
		AssignedTo:      "Luis Gomez",
		Attachments:     []Attachment{},
		Cost:            &cost,
	}
}

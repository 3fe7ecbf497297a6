package extract

// External dataset shapes. Field names match the sources exactly; decoding
// is strict about shape (an array of objects) but tolerant about per-row
// omissions, which surface later as validation skips rather than parse
// failures.

// countryRow is one entry of the countries dataset.
type countryRow struct {
	// ID is the dataset-internal numeric id. It is never persisted; its
	// only use is joining the states dataset's country_id back to an ISO2.
	ID   int    `json:"id"`
	ISO2 string `json:"iso2"`
	Name string `json:"name"`
}

// stateRow is one entry of the flat provinces/states dataset.
type stateRow struct {
	Name        string `json:"name"`
	StateCode   string `json:"state_code"`
	CountryCode string `json:"country_code"`
}

// nestedStateRow is one entry of the states-with-nested-cities dataset.
type nestedStateRow struct {
	CountryID int       `json:"country_id"`
	Name      string    `json:"name"`
	StateCode string    `json:"state_code"`
	Cities    []cityRow `json:"cities"`
}

// cityRow is a city nested under a state entry. Coordinates arrive as
// numbers in some dataset revisions and as quoted strings in others.
type cityRow struct {
	Name      string `json:"name"`
	Latitude  any    `json:"latitude"`
	Longitude any    `json:"longitude"`
}

// StateEntry is a parsed states-with-cities entry joined with the countries
// dataset, so each entry knows the ISO2 of its owning country.
type StateEntry struct {
	CountryISO2 string
	Name        string
	StateCode   string
	Cities      []CityEntry
}

// CityEntry is one city under a StateEntry.
type CityEntry struct {
	Name      string
	Latitude  float64
	Longitude float64
}

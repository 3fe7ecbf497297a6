package models

import "fmt"

// Kind identifies one level of the geographic hierarchy.
type Kind string

const (
	KindContinent Kind = "continent"
	KindCountry   Kind = "country"
	KindProvince  Kind = "province"
	KindCity      Kind = "city"
)

// ParseKind validates a kind string from an external caller (route params).
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindContinent, KindCountry, KindProvince, KindCity:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown entity kind %q", s)
	}
}

// Child returns the kind one level down, or ok=false at the leaf.
func (k Kind) Child() (child Kind, ok bool) {
	switch k {
	case KindContinent:
		return KindCountry, true
	case KindCountry:
		return KindProvince, true
	case KindProvince:
		return KindCity, true
	default:
		return "", false
	}
}

// ParentColumn returns the foreign-key column pointing at this kind's
// parent, or "" at the root.
func (k Kind) ParentColumn() string {
	switch k {
	case KindCountry:
		return "continent_id"
	case KindProvince:
		return "country_id"
	case KindCity:
		return "province_id"
	default:
		return ""
	}
}

// Table returns the table name backing this kind.
func (k Kind) Table() string {
	switch k {
	case KindContinent:
		return Continent{}.TableName()
	case KindCountry:
		return Country{}.TableName()
	case KindProvince:
		return Province{}.TableName()
	case KindCity:
		return City{}.TableName()
	default:
		return ""
	}
}

package models

import "geo-manager/core/reconcile"

// The four entity kinds form a strict tree:
// Continent -> Country -> Province -> City.
//
// Name plus parent reference is the identity pair: set on first insert,
// never altered by reconciliation. NameKey stores the normalized form of
// Name; the composite unique index on (parent, name_key) enforces the
// per-scope uniqueness invariant at the store level and is what turns a
// concurrent double-insert into a recoverable duplicate-key conflict.

// Continent is the root level; it has no parent.
type Continent struct {
	ID      uint   `gorm:"column:id;primaryKey" json:"id"`
	Name    string `gorm:"column:name;size:191" json:"name"`
	NameKey string `gorm:"column:name_key;size:191;uniqueIndex:uniq_continent_name" json:"-"`
	// Code is the two-letter continent code (enrichment).
	Code string `gorm:"column:code;size:8" json:"code,omitempty"`
}

// TableName overrides the table name.
func (Continent) TableName() string { return "continents" }

// Matching projects the row into the view the key resolver works with.
func (c Continent) Matching() reconcile.Entity {
	return reconcile.Entity{ID: c.ID, Name: c.Name, Code: c.Code}
}

// Country belongs to a continent.
type Country struct {
	ID          uint   `gorm:"column:id;primaryKey" json:"id"`
	ContinentID uint   `gorm:"column:continent_id;uniqueIndex:uniq_country_scope" json:"continent_id"`
	Name        string `gorm:"column:name;size:191" json:"name"`
	NameKey     string `gorm:"column:name_key;size:191;uniqueIndex:uniq_country_scope" json:"-"`
	// Code is the ISO2 code. Enrichment, but near-identity: it is the
	// join key into external province datasets.
	Code string `gorm:"column:code;size:8" json:"code,omitempty"`
	// Flag, Population and HealthcareIndex are curated enrichment:
	// reconciliation may refresh them but never blanks them out.
	Flag            string  `gorm:"column:flag;size:512" json:"flag,omitempty"`
	Population      int64   `gorm:"column:population" json:"population,omitempty"`
	HealthcareIndex float64 `gorm:"column:healthcare_index" json:"healthcare_index,omitempty"`
}

// TableName overrides the table name.
func (Country) TableName() string { return "countries" }

// Matching projects the row into the key resolver's view.
func (c Country) Matching() reconcile.Entity {
	return reconcile.Entity{ID: c.ID, Name: c.Name, Code: c.Code}
}

// Province belongs to a country.
type Province struct {
	ID        uint   `gorm:"column:id;primaryKey" json:"id"`
	CountryID uint   `gorm:"column:country_id;uniqueIndex:uniq_province_scope" json:"country_id"`
	Name      string `gorm:"column:name;size:191" json:"name"`
	NameKey   string `gorm:"column:name_key;size:191;uniqueIndex:uniq_province_scope" json:"-"`
	// Code is the state code from the source dataset.
	Code      string `gorm:"column:code;size:16" json:"code,omitempty"`
	FlagImage string `gorm:"column:flag_image;size:512" json:"flag_image,omitempty"`
	// Region is a denormalized copy of the owning continent's name, kept
	// as a compatibility shim for consumers of the deprecated enum-region
	// scheme. Set on insert, read-only afterwards; the direct CountryID
	// reference is the single identity strategy.
	Region string `gorm:"column:region;size:64" json:"region,omitempty"`
}

// TableName overrides the table name.
func (Province) TableName() string { return "provinces" }

// Matching projects the row into the key resolver's view.
func (p Province) Matching() reconcile.Entity {
	return reconcile.Entity{ID: p.ID, Name: p.Name, Code: p.Code}
}

// City is the leaf level; it has no dependents.
type City struct {
	ID         uint    `gorm:"column:id;primaryKey" json:"id"`
	ProvinceID uint    `gorm:"column:province_id;uniqueIndex:uniq_city_scope" json:"province_id"`
	Name       string  `gorm:"column:name;size:191" json:"name"`
	NameKey    string  `gorm:"column:name_key;size:191;uniqueIndex:uniq_city_scope" json:"-"`
	Latitude   float64 `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude  float64 `gorm:"column:longitude" json:"longitude,omitempty"`
	FlagImage  string  `gorm:"column:flag_image;size:512" json:"flag_image,omitempty"`
}

// TableName overrides the table name.
func (City) TableName() string { return "cities" }

// Matching projects the row into the key resolver's view.
// Cities carry no candidate code; matching is by name only.
func (c City) Matching() reconcile.Entity {
	return reconcile.Entity{ID: c.ID, Name: c.Name}
}

// Package models defines the persisted geographic reference hierarchy:
// Continent, Country, Province and City, plus the Kind helper that lets
// store and integrity code walk the tree generically.
//
// Identity fields (name, parent reference) are written once at insert time.
// Enrichment fields (codes, flags, coordinates, population figures) are
// refreshed by reconciliation only when a source supplies a non-empty value.
// The name_key columns hold the normalized name and back the composite
// unique indexes that make per-scope name uniqueness a store-level
// guarantee rather than a convention.
package models

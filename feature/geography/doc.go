// Package geography is the curated-data surface of the hierarchy: CRUD over
// continents, countries, provinces and cities.
//
// Writes derive the normalized name key server-side, so the per-scope
// uniqueness invariant holds no matter how the client spells a name. Deletes
// are gated by the integrity guard and answer 409 with the dependent count
// when children exist.
//
// Reconciliation lives in the extract and merge subpackages and runs from
// the CLI, not from these routes.
package geography

package merge

import "geo-manager/core/reconcile"

// continentSeed is the builtin root dataset. Continents are a closed set,
// so they are seeded from here rather than fetched from an external source.
var continentSeed = []struct {
	Name string
	Code string
}{
	{"Africa", "AF"},
	{"Antarctica", "AN"},
	{"Asia", "AS"},
	{"Europe", "EU"},
	{"North America", "NA"},
	{"Oceania", "OC"},
	{"South America", "SA"},
}

// continentRecords renders the seed as source records for the pipeline, so
// continents converge through the same resolve/plan/execute path as every
// other level.
func continentRecords() []reconcile.SourceRecord {
	records := make([]reconcile.SourceRecord, 0, len(continentSeed))
	for _, seed := range continentSeed {
		records = append(records, reconcile.SourceRecord{
			Name:          seed.Name,
			CandidateCode: seed.Code,
			Enrichment:    map[string]any{"code": seed.Code},
		})
	}
	return records
}

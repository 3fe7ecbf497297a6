package reconcile

import "geo-manager/core/normalize"

// Dedupe collapses duplicate records within one incoming batch before they
// reach the store. The composite key is (ParentKey, normalized name).
//
// Policy: first occurrence in input order wins; later collisions are
// silently dropped. This is deliberate, not an artifact of map iteration —
// when a dataset contains near-duplicate rows, the earliest row is the one
// that gets merged, and re-runs keep picking the same winner.
func Dedupe(records []SourceRecord) []SourceRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]SourceRecord, 0, len(records))

	for _, rec := range records {
		key := rec.ParentKey + "\x00" + normalize.Key(rec.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}

	return out
}

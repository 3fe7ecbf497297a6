package reconcile

import (
	"strings"

	"geo-manager/core/normalize"
)

// Resolve matches one source record against the entities already known in
// the same parent scope.
//
// Candidate-code equality (case-insensitive exact) is tried before the
// normalized-name comparison: codes are more stable identifiers across
// dataset revisions than free-text names. Within either strategy, exactly
// one hit resolves to Matched, more than one to Ambiguous. Ambiguity is
// never guessed away; the caller records it and plans no write.
func Resolve(rec SourceRecord, existing []Entity) Resolution {
	if rec.CandidateCode != "" {
		if res, decided := matchBy(rec, existing, func(e Entity) bool {
			return e.Code != "" && strings.EqualFold(e.Code, rec.CandidateCode)
		}); decided {
			return res
		}
	}

	nameKey := normalize.Key(rec.Name)
	if res, decided := matchBy(rec, existing, func(e Entity) bool {
		return normalize.Key(e.Name) == nameKey
	}); decided {
		return res
	}

	return Resolution{Record: rec, Outcome: Unmatched}
}

// matchBy collects entities satisfying the predicate. decided is false when
// nothing matched, letting the caller fall through to the next strategy.
func matchBy(rec SourceRecord, existing []Entity, match func(Entity) bool) (Resolution, bool) {
	var hits []Entity
	for _, e := range existing {
		if match(e) {
			hits = append(hits, e)
		}
	}

	switch len(hits) {
	case 0:
		return Resolution{}, false
	case 1:
		hit := hits[0]
		return Resolution{Record: rec, Outcome: Matched, Entity: &hit, Candidates: 1}, true
	default:
		return Resolution{Record: rec, Outcome: Ambiguous, Candidates: len(hits)}, true
	}
}

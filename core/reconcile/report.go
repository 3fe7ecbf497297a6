package reconcile

import "go.uber.org/zap"

// Report aggregates per-record outcomes of a reconciliation run. Every
// bucket is always present (zero included) so re-running after a fix is
// verifiable by comparing reports.
type Report struct {
	// Inserted counts newly created entities.
	Inserted int `json:"inserted"`
	// Updated counts matched entities whose enrichment actually changed.
	Updated int `json:"updated"`
	// Matched counts entities that resolved but needed no change.
	Matched int `json:"matched"`
	// Skipped counts records dropped for validation failures or
	// unresolved duplicate-key conflicts.
	Skipped int `json:"skipped"`
	// Ambiguous counts records matching more than one entity in scope.
	Ambiguous int `json:"ambiguous"`
	// Errored counts per-item store failures outside the conflict class.
	Errored int `json:"errored"`
}

// Merge folds another report into this one. Used when independent parent
// scopes are reconciled concurrently and their reports combined.
func (r *Report) Merge(other Report) {
	r.Inserted += other.Inserted
	r.Updated += other.Updated
	r.Matched += other.Matched
	r.Skipped += other.Skipped
	r.Ambiguous += other.Ambiguous
	r.Errored += other.Errored
}

// Total returns the number of records accounted for across all buckets.
func (r Report) Total() int {
	return r.Inserted + r.Updated + r.Matched + r.Skipped + r.Ambiguous + r.Errored
}

// Fields renders the report as structured log fields.
func (r Report) Fields() []zap.Field {
	return []zap.Field{
		zap.Int("inserted", r.Inserted),
		zap.Int("updated", r.Updated),
		zap.Int("matched", r.Matched),
		zap.Int("skipped", r.Skipped),
		zap.Int("ambiguous", r.Ambiguous),
		zap.Int("errored", r.Errored),
	}
}

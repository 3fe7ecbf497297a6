package reconcile

import "fmt"

// SourceRecord is one flattened row from an external dataset, scoped to a
// single parent. It is transient: records exist only for the duration of a
// reconciliation run and are never persisted.
type SourceRecord struct {
	// Name is the display name as the source spells it. Identity field.
	Name string

	// ParentKey is the scope key of the owning parent (e.g., the ISO2 code
	// of the country that owns a province batch, or "" at the root level).
	// It is resolved before matching; records in one batch share the scope.
	ParentKey string

	// CandidateCode is an optional stable code carried by the source
	// (ISO2 for countries, state_code for provinces). Used for matching
	// before the name, because codes survive dataset revisions better.
	CandidateCode string

	// Identity holds extra set-on-insert fields beyond name and parent,
	// e.g. the derived region tag on provinces. Applied only when a new
	// entity is created, never on update.
	Identity map[string]any

	// Enrichment maps column name to value for mutable fields. Only
	// non-empty values may be present; the extractor must omit fields the
	// source does not supply.
	Enrichment map[string]any
}

// Entity is the matching view of an already-stored target entity within the
// same parent scope. Adapters project their store rows into this shape.
type Entity struct {
	ID   uint
	Name string
	Code string
}

// Outcome classifies how a source record resolved against the scope.
type Outcome int

const (
	// Unmatched means no existing entity matched; treat as a new entity.
	Unmatched Outcome = iota
	// Matched means exactly one existing entity matched.
	Matched
	// Ambiguous means more than one entity matched. Never guessed:
	// the record is counted and dropped from planning.
	Ambiguous
)

// Resolution is the outcome of matching one source record.
type Resolution struct {
	Record  SourceRecord
	Outcome Outcome

	// Entity is the matched target. Set only when Outcome is Matched.
	Entity *Entity

	// Candidates is the number of entities that matched. Informational;
	// greater than one only when Outcome is Ambiguous.
	Candidates int
}

// UpsertOp is one planned write, keyed by the identity pair (name, parent).
type UpsertOp struct {
	// Name and NameKey identify the target row within the scope.
	Name    string
	NameKey string

	// CandidateCode is carried through for conflict logging.
	CandidateCode string

	// SetOnInsert holds identity fields applied only when the row is
	// newly created.
	SetOnInsert map[string]any

	// Set holds enrichment columns applied on insert and update alike.
	// Fields absent or empty in the source are omitted entirely, never
	// written as empty, so curated values are never blanked out.
	Set map[string]any

	// Existing is the matched entity when the op updates a known row,
	// nil when the op inserts a new one.
	Existing *Entity
}

// ValidationError marks a source record missing a required identity field.
// The record is skipped; the batch continues.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("source record missing required field %q", e.Field)
}

// Validate checks that a record carries the identity fields an upsert needs.
func Validate(rec SourceRecord) error {
	if rec.Name == "" {
		return &ValidationError{Field: "name"}
	}
	return nil
}

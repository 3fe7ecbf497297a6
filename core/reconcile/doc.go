// Package reconcile implements the store-agnostic half of the geographic
// reference reconciliation engine.
//
// External datasets identify the same place by different keys (ISO2 codes,
// free-text names, state codes). This package matches incoming source
// records against entities already known in the same parent scope and plans
// idempotent upserts that merge new records and enrich existing ones without
// ever overwriting identity fields or blanking out curated values.
//
// # Pipeline
//
// For one parent scope the in-memory flow is:
//
//	records -> Validate -> Dedupe -> Resolve -> Plan -> []UpsertOp
//
// BuildOps chains these steps. Executing the ops against the store is the
// job of feature-level executors (see feature/geography/merge), which also
// own the duplicate-key fallback behavior and fill in the Report.
//
// # Matching rules
//
// Resolve tries candidate-code equality (case-insensitive) before the
// normalized-name comparison. A record matching more than one entity is
// Ambiguous: it is reported, never guessed.
//
// # Dedup policy
//
// Within one batch the first record for a (parent, normalized name) pair
// wins and later ones are dropped. The policy is explicit and documented
// because it decides which of several near-duplicate source rows is merged.
package reconcile

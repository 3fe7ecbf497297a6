// Package normalize provides the canonical string form used to compare
// geographic names across datasets.
//
// External datasets spell the same place inconsistently ("São Paulo",
// "sao paulo", " SAO  PAULO "). Every matching step in the reconciliation
// pipeline compares names through Key, so the canonicalization rules live
// in exactly one place:
//
//   - lowercase
//   - Unicode NFD decomposition with combining marks removed
//   - surrounding whitespace trimmed
//   - internal whitespace runs collapsed to one space
//
// Key is deterministic, pure, and idempotent. It never fails.
package normalize

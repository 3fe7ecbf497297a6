// Package merge applies planned reconciliation operations to the store and
// orchestrates full runs level by level.
//
// # Executor
//
// The executor submits inserts as one unordered multi-row create. When the
// bulk call fails with a duplicate-key error it re-submits the remaining
// operations individually, so the single conflicting record is counted as
// skipped while the rest of the batch still converges. Updates go row by
// row; zero affected rows means the store already held the incoming values
// and the record counts as matched.
//
// # Reconciler
//
// The reconciler walks the hierarchy top down. Continents come from a
// builtin seed. Countries, provinces and cities come from external datasets
// via the extract package; province and city runs fan out across country
// scopes with a bounded errgroup, since sibling scopes never contend.
package merge

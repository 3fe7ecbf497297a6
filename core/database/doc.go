// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL connections for the
// geographic reference store based on the application's configuration.
//
// # Connect
//
// Connect opens an explicit *gorm.DB handle that is passed into every
// component. Connection timeouts are baked into the DSN so a slow or
// unreachable database fails fast instead of stalling a batch run.
// TranslateError is enabled so duplicate-key violations surface as
// gorm.ErrDuplicatedKey, which the merge executor relies on for its
// per-item conflict fallback.
//
// # Schema Inspection
//
// GetTableColumns and HasColumn inspect the live schema. The reconcile
// preflight uses them to confirm the name-key columns and parent reference
// columns exist before planning any writes.
package database

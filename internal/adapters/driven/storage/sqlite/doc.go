// Package sqlite provides the SQLite-backed run history.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files
// and is applied once, in a transaction.
//
// # Data Location
//
// By default, the database is stored at ~/.docmeta/runs.db, or under
// $DOCMETA_HOME when set.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite

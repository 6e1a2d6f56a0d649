// Package sqlite provides SQLite-backed implementations of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It provides two stores:
//
//   - IndexStore: a directory of FTS5 databases, each holding a
//     records(source, content) table, implementing IndexStore and IndexWriter
//   - StateStore: local state, exposing SchedulerStore
//
// # Schema
//
// The state database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Index databases have no migrations; the indexer creates the records table on
// first insert.
//
// # Data Location
//
// The state database is stored at ~/.sercha-scan/state.db by default. Index
// databases live in the configured data directory and are named by their file
// name without the .db extension.
//
// # Hot Reload
//
// IndexStore.Watch reloads databases when files in the data directory change,
// so synced or newly indexed databases are served without a restart.
package sqlite

// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ResourceLister: Enumerates searchable resources in an object store
//   - ResourceStreamer: Opens one resource as a line stream
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the matching backend is then unavailable:
//
//   - IndexStore / IndexWriter: SQLite FTS5 databases for the indexed backend
//   - IndexSyncer: Downloads index databases from the object store
//   - BridgeClient: Remote search API for the bridge backend
//   - SchedulerStore: Scheduler task state and history
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven

// Package services implements the core business logic of sercha-scan.
//
// Services implement driving port interfaces and coordinate between
// driven adapters. They contain all search orchestration logic.
//
// # Services
//
//   - StreamSearchService: Concurrent scan of flat files in an object store
//   - IndexedSearchService: Search over SQLite FTS5 databases
//   - BridgeSearchService: Search forwarded to a remote bridge
//   - IndexerService: Builds and maintains FTS5 databases
//   - SettingsService: Resolves configuration
//   - Scheduler: Runs catalog refresh and index sync on cron schedules
//
// The extractor and criterion filter are pure functions shared by the
// streaming and indexed strategies.
package services

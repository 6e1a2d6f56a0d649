// Package domain defines the core business entities for sercha-scan.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SearchCriterion: One field/value constraint of a search
//   - SearchRequest: A list of criteria with pagination
//   - Record: A structured record extracted from one line of text
//   - Resource: A streamable flat file held in an object store
//   - SearchResult: One page of records plus totals
//   - Settings: Runtime configuration for every backend
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

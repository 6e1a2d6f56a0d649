// Package memory provides in-memory implementations of the driven ports.
//
// They back tests and the local development loop; nothing is persisted.
package memory

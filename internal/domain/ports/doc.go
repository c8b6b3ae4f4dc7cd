// Package ports defines the interfaces (ports) that external adapters must implement.
// The dispatcher talks to the data store and the token service only through
// these contracts, so tests can substitute in-memory fakes.
package ports

// Package registry holds the capability catalog and its consultant rosters.
//
// The set of capabilities is fixed when the Registry is built, either from
// DefaultCatalog or from a catalog file. Only rosters change at runtime,
// through Register and Unregister, and both require a practice lead actor.
package registry

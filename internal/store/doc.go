// Package store persists jobs, applications, and transition history in
// SQLite, and doubles as the dead-letter sink for the notification pipeline.
//
// The one invariant this package owns is the atomicity of a stage change:
// UpdateStageIfCurrent performs the compare-and-set stage update and the
// transition-record append inside a single transaction, so no reader can
// observe one without the other and concurrent transitions cannot both
// commit from the same starting stage.
//
// Schema changes bump the version in schema.go; the database refuses to open
// against a mismatched schema rather than migrating silently.
package store

// Package hiring owns the application-stage workflow: the stage enum, the
// transition graph that decides which stage moves are legal, and the service
// that validates, persists, and audits stage changes before handing
// notification work to the outbound queue.
//
// The transition table in stage.go is the single source of truth for
// workflow policy. Any change to which moves are allowed is a change to that
// table only; the service and HTTP layer never encode stage order themselves.
package hiring

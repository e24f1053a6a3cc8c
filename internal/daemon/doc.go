// Package daemon coordinates the long-running talentd process.
//
// It wires configuration, the SQLite store, the notification queue and
// worker, and the HTTP API server into a single lifecycle with flock-based
// locking to prevent multiple instances. The daemon exposes queue
// maintenance helpers used by the CLI, such as dead-letter inspection and
// requeueing.
//
// Keep orchestration logic here: the stage rules and notification delivery
// live in their respective packages while the daemon focuses on startup,
// shutdown, and high level coordination.
package daemon

// Package notify implements the outbound-notification pipeline: a bounded
// concurrent-safe FIFO of pending messages, the sender abstraction used to
// deliver them, and the single worker that drains the queue.
//
// Producers (the hiring service and the application-submission path) only
// ever call Enqueue; the worker is the sole consumer and owns a job for the
// full duration of a delivery attempt, so attempt counts and status are never
// mutated concurrently. Delivery is decoupled from workflow correctness: a
// full queue degrades notifications, never a committed stage change.
package notify

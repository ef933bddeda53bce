// Package task runs short-lived background work, such as sending
// notification emails, on a bounded in-memory queue so HTTP handlers and
// database transactions do not wait on slow side effects.
//
// Tasks are not persisted: work still queued when the process exits is lost.
package task

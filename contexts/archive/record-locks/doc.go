// Package recordlocks serializes multi-step edits of one shared record across
// callers that share nothing but the relational store.
//
// A lock is a boolean plus timestamp pair embedded on the owning record's row.
// Handles are reentrant within a process through a local counter; contention
// between processes is resolved by a single atomic conditional update retried
// with exponential backoff. A sweeper force-clears locks whose holder crashed.
package recordlocks

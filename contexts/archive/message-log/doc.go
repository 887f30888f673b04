// Package messagelog tracks the chat messages the service posts so other
// modules can refer back to them. Vote ballots reference tracked messages by
// id, and an approved log-deletion session marks its target here for the
// purge worker to pick up.
package messagelog

// Package eventbus moves committed domain events from the append-only events
// table to their in-process subscribers. Repositories append events inside
// their own transactions through the shared outbox; the dispatcher hears about
// new rows over LISTEN/NOTIFY, replays the unprocessed backlog on start, and
// marks each row processed in the same transaction that delivers it. Delivery
// is at-least-once and subscribers own their idempotency; a notification lost
// while no process is running is recovered by the next start's replay.
package eventbus

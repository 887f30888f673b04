// Package votesessions aggregates weighted votes toward a binary outcome and
// triggers exactly one side effect once the outcome is decided.
//
// A session opens around a proposed change (a build awaiting confirmation or
// a log message proposed for deletion), collects one vote row per user, and
// recomputes its tally from the full vote set on every cast. Crossing the
// pass or fail threshold closes the session; the status flip is a conditional
// update, so concurrent racers settle on a single winner who appends the
// closure event and runs the side effect.
package votesessions

// Package buildregistry keeps the catalog of submitted builds that vote
// sessions decide about. A build enters pending on submission and leaves that
// state exactly once, either confirmed (its proposed changes applied) or
// denied. The builds table also carries the is_locked/locked_at pair that
// backs the record lock guarding multi-step edits.
package buildregistry

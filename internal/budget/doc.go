// Package budget implements the run-wide call ledger.
//
// A Ledger holds the remaining global call budget plus per-file and
// per-category counters, initialized once per run and never replenished.
// All updates are atomic decrement-and-check under a single mutex:
// a reservation or consumption either fully succeeds or leaves every
// counter untouched, so two workers can never both squeeze past a cap.
//
// The planner reserves each admitted task's estimated cost against the
// global counter; the expert pool then draws per-call consumption from
// the per-file and per-category counters as sub-calls actually happen.
package budget

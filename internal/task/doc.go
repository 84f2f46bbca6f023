// Package task defines the shared data model for the review pipeline.
//
// It declares the Task unit of review work, the Finding (risk item) shape
// produced by checkers, the closed RiskCategory enumeration with its
// weight table, severity ranks, and the task status state machine
// (Pending → Running → Done/Failed/Skipped).
//
// Task IDs are stable SHA-256 hashes of path, category, and anchor range,
// so identical candidates hash to the same ID across runs and duplicate
// work is detectable without coordination.
package task

// Package triage produces candidate review tasks.
//
// Candidates come from two sources: a JSON file prepared by an external
// tool, or a keyword scan over the added lines of a unified diff that
// tags each hunk with the risk categories it appears to touch.
package triage

// Package checker defines the sub-call boundary between the expert pool
// and the tools that actually inspect code.
//
// A Checker receives a file path, anchor range, and risk category, and
// returns findings plus an evidence reference; it must be idempotent so
// failed calls can be retried safely. Implementations are black boxes:
// static analyzers, semantic analysis calls, anything honoring the
// contract.
//
// Typed errors separate how the pool reacts: ErrToolUnavailable degrades
// the single check and moves on, a TransientError is retried with
// backoff, anything else fails the sub-call outright.
//
// JSON emitted by analysis backends is frequently mangled (markdown
// fences, trailing commas, unquoted keys); ParseFindings strips fences
// and runs a jsonrepair pass before giving up.
package checker

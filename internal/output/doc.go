// Package output formats review reports for display or machine consumption.
//
// Three formats are supported:
//   - text     - human-readable terminal output with colorized labels (default)
//   - json     - full structured JSON report, metadata included
//   - markdown - PR-comment-friendly, uncertain findings collapsed
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then
// call [Writer.Write] with an [io.Writer] and a [*report.Report].
// [WriteReport] handles destination selection.
package output

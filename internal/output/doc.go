// Package output formats setup plans for display or machine consumption.
//
// Three formats are supported:
//   - text    : human-readable terminal output (default)
//   - json    : the full structured plan
//   - markdown: a checklist suitable for onboarding notes or tickets
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*setup.Plan]. [WritePlan] handles
// destination selection.
package output

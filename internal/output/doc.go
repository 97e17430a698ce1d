// Package output formats overview results for display or machine consumption.
//
// Two formats are supported:
//   - text: the overview between a banner and the shareable link (default)
//   - json: an object with overview, overview_id and url
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [Report].
package output

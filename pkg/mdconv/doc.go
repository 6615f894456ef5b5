// Package mdconv converts single lines of lightweight markup.
//
// Two directions share this package:
//   - ToHTML turns a line of Markdown (as produced by an HTML-to-text filter)
//     back into an HTML fragment suitable for a table cell.
//   - Escape / EscapeSpans escape text for Telegram's Markdown dialects,
//     keeping code spans and link targets intact.
//
// All HTML post-processing is string/regex based and stays inside this
// package; callers only ever see finished fragments.
package mdconv

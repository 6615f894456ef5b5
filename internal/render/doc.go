// Package render turns diffs into channel markup.
//
// HTML renders unified and word diffs as table rows or spans, TableDiff
// builds a side-by-side view from old and new contents, and Console adds
// terminal colours to text reports. All renderers are lazy: they return
// iter.Seq values and do no I/O.
package render

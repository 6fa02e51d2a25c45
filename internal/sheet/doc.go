// Package sheet abstracts the spreadsheet-like tabular store the jobs read
// and mutate, and supplies header resolution helpers shared by the classifier
// and the cleanup machine.
//
// The Store interface mirrors index-addressed spreadsheet APIs: 1-based rows,
// header in row 1, block deletion that shifts higher rows down. The shipped
// implementation is SQLite-backed; a hosted-sheets client satisfies the same
// interface without touching the core.
package sheet

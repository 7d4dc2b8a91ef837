// Package report renders harness runs for people and for CI.
//
// FormatResults produces the Markdown report an operator downloads after a
// run. JSON produces the machine-readable run document and JUnit produces a
// JUnit XML file CI systems can ingest. All three are pure functions of their
// input.
package report

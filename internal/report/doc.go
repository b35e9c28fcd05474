// Package report renders audit findings for people and machines.
//
// It produces the delimited-text export consumed by spreadsheet users, reads that export back, and renders
// table, JSON, YAML, and SARIF reports together with a severity summary.
package report

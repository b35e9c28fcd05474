// Package workspace models the tag-management workspace snapshot consumed by
// the audit engine and normalizes raw JSON or YAML documents into it.
//
// Snapshot, Tag, Trigger, Variable, and Metadata are plain read-only values.
// DecodeSnapshot accepts both the flat tags/triggers/variables layout and the
// platform's containerVersion export layout; Loader reads documents from disk
// or standard input.
package workspace

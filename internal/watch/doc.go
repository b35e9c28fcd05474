// Package watch re-runs workspace audits whenever the snapshot file changes on disk.
package watch

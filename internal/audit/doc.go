// Package audit evaluates tag-management workspace snapshots against a fixed battery of rule pillars.
//
// Run and Engine.Audit execute the pillars in their documented order and return findings ordered by
// severity. The engine performs no I/O. CommandBuilder and Service wire the engine into the tagaudit
// CLI: they load snapshots, render reports, and enforce the configured failure threshold.
package audit

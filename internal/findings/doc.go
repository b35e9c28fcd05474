// Package findings defines audit findings, their severities and categories, and the severity ordering
// applied to every audit result.
package findings

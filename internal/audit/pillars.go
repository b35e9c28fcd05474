package audit

import (
	"github.com/temirov/tagaudit/internal/findings"
	"github.com/temirov/tagaudit/internal/workspace"
)

// Pillar names in evaluation order.
const (
	PillarHygiene   = "hygiene"
	PillarTags      = "tags"
	PillarTriggers  = "triggers"
	PillarVariables = "variables"
	PillarGA4       = "ga4"
	PillarNaming    = "naming"
	PillarSecurity  = "security"
)

// PillarEvaluator inspects a snapshot and reports findings. Evaluators never mutate their inputs.
type PillarEvaluator func(snapshot workspace.Snapshot, metadata workspace.Metadata) []findings.Finding

// Pillar pairs a rule group name with its evaluator.
type Pillar struct {
	Name     string
	Evaluate PillarEvaluator
}

// Pillars returns the rule pillars in the order their findings are concatenated.
func Pillars() []Pillar {
	return []Pillar{
		{Name: PillarHygiene, Evaluate: EvaluateHygiene},
		{Name: PillarTags, Evaluate: EvaluateTags},
		{Name: PillarTriggers, Evaluate: EvaluateTriggers},
		{Name: PillarVariables, Evaluate: EvaluateVariables},
		{Name: PillarGA4, Evaluate: EvaluateGA4},
		{Name: PillarNaming, Evaluate: EvaluateNaming},
		{Name: PillarSecurity, Evaluate: EvaluateSecurity},
	}
}

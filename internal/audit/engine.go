package audit

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/tagaudit/internal/findings"
	"github.com/temirov/tagaudit/internal/workspace"
)

const (
	pillarEvaluatedMessageConstant = "audit pillar evaluated"
	auditCompletedMessageConstant  = "workspace audit completed"
	logFieldPillarConstant         = "pillar"
	logFieldFindingCountConstant   = "finding_count"
	logFieldConcurrentConstant     = "concurrent"
	logFieldTagCountConstant       = "tag_count"
)

// Engine runs the rule pillars against workspace snapshots.
type Engine struct {
	logger     *zap.Logger
	concurrent bool
	pillars    []Pillar
}

// NewEngine constructs an Engine. A nil logger disables logging; concurrent evaluates pillars in parallel.
func NewEngine(logger *zap.Logger, concurrent bool) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger:     logger,
		concurrent: concurrent,
		pillars:    Pillars(),
	}
}

// Run audits the snapshot with every pillar sequentially and returns findings ordered by severity.
func Run(snapshot workspace.Snapshot, metadata workspace.Metadata) []findings.Finding {
	pillarResults := make([][]findings.Finding, 0, len(Pillars()))
	for _, pillar := range Pillars() {
		pillarResults = append(pillarResults, pillar.Evaluate(snapshot, metadata))
	}
	return findings.SortBySeverity(concatenate(pillarResults))
}

// Audit evaluates the snapshot and returns findings ordered by severity. Parallel evaluation yields the same
// order as sequential evaluation. The context is only consulted before pillars start.
func (engine *Engine) Audit(executionContext context.Context, snapshot workspace.Snapshot, metadata workspace.Metadata) ([]findings.Finding, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}

	pillarResults := make([][]findings.Finding, len(engine.pillars))
	if engine.concurrent {
		if evaluationError := engine.evaluateConcurrently(executionContext, snapshot, metadata, pillarResults); evaluationError != nil {
			return nil, evaluationError
		}
	} else {
		for pillarIndex, pillar := range engine.pillars {
			if contextError := executionContext.Err(); contextError != nil {
				return nil, contextError
			}
			pillarResults[pillarIndex] = engine.evaluate(pillar, snapshot, metadata)
		}
	}

	orderedFindings := findings.SortBySeverity(concatenate(pillarResults))
	engine.logger.Debug(
		auditCompletedMessageConstant,
		zap.Int(logFieldTagCountConstant, len(snapshot.Tags)),
		zap.Int(logFieldFindingCountConstant, len(orderedFindings)),
		zap.Bool(logFieldConcurrentConstant, engine.concurrent),
	)
	return orderedFindings, nil
}

func (engine *Engine) evaluateConcurrently(executionContext context.Context, snapshot workspace.Snapshot, metadata workspace.Metadata, pillarResults [][]findings.Finding) error {
	group, groupContext := errgroup.WithContext(executionContext)
	for pillarIndex, pillar := range engine.pillars {
		pillarIndex, pillar := pillarIndex, pillar
		group.Go(func() error {
			if contextError := groupContext.Err(); contextError != nil {
				return contextError
			}
			pillarResults[pillarIndex] = engine.evaluate(pillar, snapshot, metadata)
			return nil
		})
	}
	return group.Wait()
}

func (engine *Engine) evaluate(pillar Pillar, snapshot workspace.Snapshot, metadata workspace.Metadata) []findings.Finding {
	pillarFindings := pillar.Evaluate(snapshot, metadata)
	engine.logger.Debug(
		pillarEvaluatedMessageConstant,
		zap.String(logFieldPillarConstant, pillar.Name),
		zap.Int(logFieldFindingCountConstant, len(pillarFindings)),
	)
	return pillarFindings
}

func concatenate(pillarResults [][]findings.Finding) []findings.Finding {
	totalCount := 0
	for _, pillarFindings := range pillarResults {
		totalCount += len(pillarFindings)
	}

	combined := make([]findings.Finding, 0, totalCount)
	for _, pillarFindings := range pillarResults {
		combined = append(combined, pillarFindings...)
	}
	return combined
}

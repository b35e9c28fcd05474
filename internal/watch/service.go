package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/temirov/tagaudit/internal/audit"
)

const (
	standardInputSnapshotConstant      = "-"
	defaultDebounceIntervalConstant    = 300 * time.Millisecond
	watcherCreateErrorTemplateConstant = "unable to start file watcher: %w"
	watcherAddErrorTemplateConstant    = "unable to watch directory %s: %w"
	watchStartedMessageConstant        = "watching workspace snapshot"
	snapshotChangedMessageConstant     = "workspace snapshot changed"
	auditThresholdMessageConstant      = "audit findings reached the failure threshold"
	auditFailedMessageConstant         = "workspace audit failed"
	watcherErrorMessageConstant        = "file watcher reported an error"
	watchStoppedMessageConstant        = "stopped watching workspace snapshot"
	logFieldSnapshotConstant           = "snapshot"
	logFieldDirectoryConstant          = "directory"
	logFieldOperationConstant          = "operation"
	relevantOperationsConstant         = fsnotify.Write | fsnotify.Create | fsnotify.Rename
)

// ErrStandardInputNotWatchable indicates that the snapshot path refers to standard input.
var ErrStandardInputNotWatchable = errors.New("standard input snapshots cannot be watched")

// AuditRunner executes a single audit.
type AuditRunner interface {
	Run(executionContext context.Context, options audit.CommandOptions) (audit.Result, error)
}

// Service watches a snapshot file and audits it after every change.
type Service struct {
	runner         AuditRunner
	watcherFactory WatcherFactory
	logger         *zap.Logger
	debounce       time.Duration
}

// NewService constructs a Service. A nil factory uses fsnotify; a non-positive debounce uses the default interval.
func NewService(runner AuditRunner, watcherFactory WatcherFactory, logger *zap.Logger, debounce time.Duration) *Service {
	if watcherFactory == nil {
		watcherFactory = NewNotifyWatcher
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = defaultDebounceIntervalConstant
	}
	return &Service{
		runner:         runner,
		watcherFactory: watcherFactory,
		logger:         logger,
		debounce:       debounce,
	}
}

// Watch audits the snapshot once, then again after each burst of writes settles, until executionContext is done.
// Audit failures are logged and watching continues; it returns the number of audits performed.
func (service *Service) Watch(executionContext context.Context, options audit.CommandOptions) (int, error) {
	if options.SnapshotPath == standardInputSnapshotConstant {
		return 0, ErrStandardInputNotWatchable
	}

	snapshotPath := filepath.Clean(options.SnapshotPath)
	watchedDirectory := filepath.Dir(snapshotPath)

	watcher, watcherError := service.watcherFactory()
	if watcherError != nil {
		return 0, fmt.Errorf(watcherCreateErrorTemplateConstant, watcherError)
	}
	defer watcher.Close()

	if addError := watcher.Add(watchedDirectory); addError != nil {
		return 0, fmt.Errorf(watcherAddErrorTemplateConstant, watchedDirectory, addError)
	}

	service.logger.Info(watchStartedMessageConstant, zap.String(logFieldSnapshotConstant, snapshotPath), zap.String(logFieldDirectoryConstant, watchedDirectory))

	service.audit(executionContext, options)
	runsCompleted := 1

	var debounceTimer *time.Timer
	var debounceChannel <-chan time.Time
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-executionContext.Done():
			service.logger.Info(watchStoppedMessageConstant, zap.String(logFieldSnapshotConstant, snapshotPath))
			return runsCompleted, nil
		case event, open := <-watcher.Events():
			if !open {
				return runsCompleted, nil
			}
			if filepath.Clean(event.Name) != snapshotPath || event.Op&relevantOperationsConstant == 0 {
				continue
			}
			service.logger.Debug(snapshotChangedMessageConstant, zap.String(logFieldSnapshotConstant, snapshotPath), zap.String(logFieldOperationConstant, event.Op.String()))
			if debounceTimer == nil {
				debounceTimer = time.NewTimer(service.debounce)
			} else {
				debounceTimer.Stop()
				debounceTimer.Reset(service.debounce)
			}
			debounceChannel = debounceTimer.C
		case <-debounceChannel:
			debounceChannel = nil
			service.audit(executionContext, options)
			runsCompleted++
		case watchError, open := <-watcher.Errors():
			if !open {
				return runsCompleted, nil
			}
			service.logger.Warn(watcherErrorMessageConstant, zap.Error(watchError))
		}
	}
}

func (service *Service) audit(executionContext context.Context, options audit.CommandOptions) {
	_, runError := service.runner.Run(executionContext, options)
	switch {
	case runError == nil:
	case errors.Is(runError, audit.ErrFindingsAtThreshold):
		service.logger.Warn(auditThresholdMessageConstant, zap.String(logFieldSnapshotConstant, options.SnapshotPath), zap.Error(runError))
	default:
		service.logger.Error(auditFailedMessageConstant, zap.String(logFieldSnapshotConstant, options.SnapshotPath), zap.Error(runError))
	}
}

package watch

import "github.com/fsnotify/fsnotify"

// FileWatcher delivers file system notifications for watched directories.
type FileWatcher interface {
	Add(path string) error
	Events() <-chan fsnotify.Event
	Errors() <-chan error
	Close() error
}

// WatcherFactory constructs a FileWatcher.
type WatcherFactory func() (FileWatcher, error)

type notifyWatcher struct {
	watcher *fsnotify.Watcher
}

// NewNotifyWatcher constructs a FileWatcher backed by fsnotify.
func NewNotifyWatcher() (FileWatcher, error) {
	watcher, creationError := fsnotify.NewWatcher()
	if creationError != nil {
		return nil, creationError
	}
	return &notifyWatcher{watcher: watcher}, nil
}

func (adapter *notifyWatcher) Add(path string) error {
	return adapter.watcher.Add(path)
}

func (adapter *notifyWatcher) Events() <-chan fsnotify.Event {
	return adapter.watcher.Events
}

func (adapter *notifyWatcher) Errors() <-chan error {
	return adapter.watcher.Errors
}

func (adapter *notifyWatcher) Close() error {
	return adapter.watcher.Close()
}

package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	homeShortcutConstant            = "~"
	homeShortcutSlashPrefixConstant = "~/"
)

var homeShortcutSeparatorPrefix = homeShortcutConstant + string(os.PathSeparator)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander converts a leading "~" in snapshot and output paths to the user's home directory.
// The home directory is resolved once and cached.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	resolveOnce           sync.Once
	homeDirectory         string
	resolved              bool
}

// NewHomeExpander constructs a HomeExpander using the operating system lookup.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand resolves a leading home shortcut. Paths without one, and "~user" forms, are returned unchanged.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || !strings.HasPrefix(candidatePath, homeShortcutConstant) {
		return candidatePath
	}

	homeDirectory, available := expander.home()
	if !available {
		return candidatePath
	}

	switch {
	case candidatePath == homeShortcutConstant:
		return homeDirectory
	case strings.HasPrefix(candidatePath, homeShortcutSlashPrefixConstant):
		return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, homeShortcutSlashPrefixConstant))
	case strings.HasPrefix(candidatePath, homeShortcutSeparatorPrefix):
		return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, homeShortcutSeparatorPrefix))
	default:
		return candidatePath
	}
}

func (expander *HomeExpander) home() (string, bool) {
	expander.resolveOnce.Do(func() {
		homeDirectory, lookupError := expander.homeDirectoryProvider()
		if lookupError != nil || len(homeDirectory) == 0 {
			return
		}
		expander.homeDirectory = homeDirectory
		expander.resolved = true
	})
	return expander.homeDirectory, expander.resolved
}

package workspace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	pathutils "github.com/temirov/tagaudit/internal/utils/path"
)

const (
	standardInputPathConstant          = "-"
	standardInputLabelConstant         = "standard input"
	snapshotReadErrorTemplateConstant  = "unable to read workspace snapshot %s: %w"
	snapshotParseErrorTemplateConstant = "unable to parse workspace snapshot %s: %w"
	jsonObjectPrefixConstant           = '{'
	jsonArrayPrefixConstant            = '['
)

// ErrSnapshotPathRequired indicates that no snapshot location was supplied.
var ErrSnapshotPathRequired = errors.New("workspace snapshot path must be provided")

// PathExpander resolves user-facing path shortcuts.
type PathExpander interface {
	Expand(candidatePath string) string
}

// FileReader reads file contents for the loader.
type FileReader func(path string) ([]byte, error)

// Loader reads workspace snapshots from files or standard input.
type Loader struct {
	pathExpander  PathExpander
	fileReader    FileReader
	standardInput io.Reader
}

// NewLoader constructs a Loader backed by the operating system.
func NewLoader(standardInput io.Reader) *Loader {
	return NewLoaderWithDependencies(pathutils.NewHomeExpander(), os.ReadFile, standardInput)
}

// NewLoaderWithDependencies constructs a Loader with explicit collaborators.
func NewLoaderWithDependencies(pathExpander PathExpander, fileReader FileReader, standardInput io.Reader) *Loader {
	if fileReader == nil {
		fileReader = os.ReadFile
	}
	return &Loader{
		pathExpander:  pathExpander,
		fileReader:    fileReader,
		standardInput: standardInput,
	}
}

// ResolvePath trims the path and expands a leading home shortcut. Standard input is returned unchanged.
func (loader *Loader) ResolvePath(snapshotPath string) string {
	trimmedPath := strings.TrimSpace(snapshotPath)
	if trimmedPath == standardInputPathConstant || loader.pathExpander == nil {
		return trimmedPath
	}
	return loader.pathExpander.Expand(trimmedPath)
}

// Load reads and decodes the snapshot at snapshotPath; "-" reads standard input.
func (loader *Loader) Load(snapshotPath string) (Document, error) {
	resolvedPath := loader.ResolvePath(snapshotPath)
	if len(resolvedPath) == 0 {
		return Document{}, ErrSnapshotPathRequired
	}

	content, sourceLabel, readError := loader.read(resolvedPath)
	if readError != nil {
		return Document{}, fmt.Errorf(snapshotReadErrorTemplateConstant, sourceLabel, readError)
	}

	document, parseError := ParseDocument(content)
	if parseError != nil {
		return Document{}, fmt.Errorf(snapshotParseErrorTemplateConstant, sourceLabel, parseError)
	}
	return document, nil
}

func (loader *Loader) read(resolvedPath string) ([]byte, string, error) {
	if resolvedPath != standardInputPathConstant {
		content, readError := loader.fileReader(resolvedPath)
		return content, resolvedPath, readError
	}

	if loader.standardInput == nil {
		return nil, standardInputLabelConstant, nil
	}
	content, readError := io.ReadAll(loader.standardInput)
	return content, standardInputLabelConstant, readError
}

// ParseDocument decodes JSON or YAML content into a Document. Empty content yields an empty snapshot.
func ParseDocument(content []byte) (Document, error) {
	trimmedContent := bytes.TrimSpace(content)
	if len(trimmedContent) == 0 {
		return DecodeSnapshot(nil)
	}

	var rawDocument any
	switch trimmedContent[0] {
	case jsonObjectPrefixConstant, jsonArrayPrefixConstant:
		if unmarshalError := json.Unmarshal(trimmedContent, &rawDocument); unmarshalError != nil {
			return Document{}, unmarshalError
		}
	default:
		if unmarshalError := yaml.Unmarshal(trimmedContent, &rawDocument); unmarshalError != nil {
			return Document{}, unmarshalError
		}
	}

	return DecodeSnapshot(rawDocument)
}

package workspace

// Tag kinds and variable kinds recognized by the audit rules.
const (
	TagTypeGA4Configuration = "gaawc"
	TagTypeGoogleTag        = "googtag"
	TagTypeCustomHTML       = "html"
	VariableTypeDOMElement  = "dom"
	DefaultWorkspaceName    = "Default Workspace"
)

// Tag represents a configured tag unit. Parameters holds the tag's own parameter data; Attributes holds
// every other record field, such as notes or consent settings.
type Tag struct {
	ID               string         `json:"id" yaml:"id"`
	Name             string         `json:"name" yaml:"name"`
	Type             string         `json:"type" yaml:"type"`
	Paused           bool           `json:"paused" yaml:"paused"`
	FiringTriggerIDs []string       `json:"firingTriggerIds" yaml:"firingTriggerIds"`
	Parameters       map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Attributes       map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// IsGhost reports whether the tag fires on nothing.
func (tag Tag) IsGhost() bool {
	return len(tag.FiringTriggerIDs) == 0
}

// Trigger represents a firing condition.
type Trigger struct {
	ID            string         `json:"id" yaml:"id"`
	Name          string         `json:"name" yaml:"name"`
	Configuration map[string]any `json:"configuration,omitempty" yaml:"configuration,omitempty"`
}

// Variable represents a named value provider.
type Variable struct {
	ID         string         `json:"id" yaml:"id"`
	Name       string         `json:"name" yaml:"name"`
	Type       string         `json:"type" yaml:"type"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Snapshot groups the workspace collections under audit. Nil collections are treated as empty.
type Snapshot struct {
	Tags      []Tag      `json:"tags" yaml:"tags"`
	Triggers  []Trigger  `json:"triggers" yaml:"triggers"`
	Variables []Variable `json:"variables" yaml:"variables"`
}

// Metadata carries caller-supplied workspace context that is not part of the snapshot itself.
type Metadata struct {
	TotalWorkspaces      int    `json:"totalWorkspaces" yaml:"totalWorkspaces" mapstructure:"totalWorkspaces"`
	CurrentWorkspaceName string `json:"currentWorkspaceName" yaml:"currentWorkspaceName" mapstructure:"currentWorkspaceName"`
}

package loam

// Document kinds recognized in a workflow repository.
const (
	KindDefinition = "definition"
	KindPrompts    = "prompts"
)

// Conventional document IDs, used when no document declares a kind.
const (
	DefaultDefinitionID = "workflow"
	DefaultPromptsID    = "prompts"
)

// DocumentMetadata is the frontmatter of a workflow repository document.
// The kind marker lets authors name their files freely; without it the
// conventional IDs apply.
type DocumentMetadata struct {
	Kind        string `json:"kind" mapstructure:"kind"`
	Description string `json:"description,omitempty" mapstructure:"description"`
}

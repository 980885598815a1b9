package newsletter

// Anchor is a hyperlink found in a post. Href is nil when the element has no href attribute.
type Anchor struct {
	Text string  `json:"text"`
	Href *string `json:"href,omitempty"`
}

// ResourceType classifies an extracted resource.
type ResourceType string

const (
	ResourcePodcast ResourceType = "podcast"
	ResourceBook    ResourceType = "book"
	ResourceTool    ResourceType = "tool"
	ResourcePerson  ResourceType = "person"
	ResourceOther   ResourceType = "other"
)

// ResourceTypes lists every accepted resource type.
func ResourceTypes() []ResourceType {
	return []ResourceType{ResourcePodcast, ResourceBook, ResourceTool, ResourcePerson, ResourceOther}
}

// Valid reports whether t is one of the accepted resource types.
func (t ResourceType) Valid() bool {
	switch t {
	case ResourcePodcast, ResourceBook, ResourceTool, ResourcePerson, ResourceOther:
		return true
	default:
		return false
	}
}

// Resource is a book, tool, person, podcast or other entity mentioned in a post.
type Resource struct {
	Name        string       `json:"name" validate:"required"`
	Description string       `json:"description"`
	Link        string       `json:"link,omitempty" validate:"omitempty,url"`
	Type        ResourceType `json:"type" validate:"required,oneof=podcast book tool person other"`
}

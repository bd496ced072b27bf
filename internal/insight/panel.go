package insight

// ComponentType identifies a block of the display document.
type ComponentType string

const (
	ComponentPanel   ComponentType = "panel"
	ComponentHeading ComponentType = "heading"
	ComponentText    ComponentType = "text"
)

// Component is a heading or text block. Text may contain **bold** markup.
type Component struct {
	Type  ComponentType `json:"type"`
	Value string        `json:"value"`
}

// Panel is an ordered list of components.
type Panel struct {
	Type     ComponentType `json:"type"`
	Children []Component   `json:"children"`
}

// Result is the display document rendered by the wallet.
type Result struct {
	Content Panel `json:"content"`
}

// Heading returns the panel heading, or "" when there is none.
func (r *Result) Heading() string {
	for _, c := range r.Content.Children {
		if c.Type == ComponentHeading {
			return c.Value
		}
	}
	return ""
}

// Text returns the text blocks in order.
func (r *Result) Text() []string {
	var out []string
	for _, c := range r.Content.Children {
		if c.Type == ComponentText {
			out = append(out, c.Value)
		}
	}
	return out
}

func heading(value string) Component {
	return Component{Type: ComponentHeading, Value: value}
}

func text(value string) Component {
	return Component{Type: ComponentText, Value: value}
}

func panel(children ...Component) Panel {
	return Panel{Type: ComponentPanel, Children: children}
}

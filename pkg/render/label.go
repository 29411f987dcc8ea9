package render

// DefaultPlaceholder labels an individual with no name and no metadata label.
const DefaultPlaceholder = "Unnamed"

// Labeler is the display-name lookup collaborator. A missing entry is not an
// error; the assembler falls back to the record name, then the placeholder.
type Labeler interface {
	Label(id string) (string, bool)
}

// LabelMap is a Labeler backed by a map.
type LabelMap map[string]string

// Label implements Labeler.
func (m LabelMap) Label(id string) (string, bool) {
	l, ok := m[id]
	return l, ok && l != ""
}

// LabelFunc adapts a function to Labeler.
type LabelFunc func(id string) (string, bool)

// Label implements Labeler.
func (f LabelFunc) Label(id string) (string, bool) { return f(id) }

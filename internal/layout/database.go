package layout

import (
	"errors"
	"sort"
)

// ErrTemplateNotFound is returned by Get for an unknown template id.
var ErrTemplateNotFound = errors.New("layout: template not found")

// Database holds named layout templates loaded at startup (spec.md
// §4.4), e.g. "single", "2-col", "3-col", "2x2", "3x2".
type Database struct {
	templates map[string]*Node
}

// NewDatabase builds a database from a name->tree map. Callers
// typically obtain the map from config-driven template files; Default
// below supplies the built-in set the teacher's layout templates
// (single/2-col/3-col/2x2/3x2) are named after.
func NewDatabase(templates map[string]*Node) (*Database, error) {
	for name, root := range templates {
		if err := ValidatePercentages(root); err != nil {
			return nil, errors.New("layout: template " + name + ": " + err.Error())
		}
	}
	return &Database{templates: templates}, nil
}

// Default returns the built-in template set named in spec.md §4.4.
func Default() *Database {
	pane := func(w, h float32) *Node { return &Node{Kind: KindPane, Width: w, Height: h} }
	container := func(w, h float32, children ...*Node) *Node {
		return &Node{Kind: KindContainer, Width: w, Height: h, Children: children}
	}

	db, err := NewDatabase(map[string]*Node{
		"single": pane(100, 100),
		"2-col": container(100, 100,
			pane(50, 100),
			pane(50, 100),
		),
		"3-col": container(100, 100,
			pane(34, 100),
			pane(33, 100),
			pane(33, 100),
		),
		"2x2": container(100, 100,
			container(100, 50, pane(50, 100), pane(50, 100)),
			container(100, 50, pane(50, 100), pane(50, 100)),
		),
		"3x2": container(100, 100,
			container(100, 50, pane(34, 100), pane(33, 100), pane(33, 100)),
			container(100, 50, pane(34, 100), pane(33, 100), pane(33, 100)),
		),
	})
	if err != nil {
		// The built-in set is a compile-time constant; a validation
		// failure here is a programmer error, not a runtime condition.
		panic(err)
	}
	return db
}

// Get returns the named template, read-only (spec.md §4.4). Callers
// that intend to mutate must Clone first.
func (d *Database) Get(id string) (*Node, error) {
	t, ok := d.templates[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	return t, nil
}

// IDs returns the database's template names in sorted order, for the
// admin socket's "layouts" verb.
func (d *Database) IDs() []string {
	ids := make([]string, 0, len(d.templates))
	for id := range d.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

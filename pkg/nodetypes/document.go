package nodetypes

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	json "github.com/goccy/go-json"
)

// Default location of the node-types document inside a tree-sitter
// project.
const (
	DefaultFileName  = "node-types.json"
	DefaultDirectory = "src"
)

// Document is a loaded node-types.json file: an ordered list of
// definitions with lookup by node-type identity. It is constructed
// once by Load and immutable thereafter.
type Document struct {
	defs  []Definition
	index map[NodeType]int
}

// NewDocument builds a document from definitions, keeping their order.
func NewDocument(defs []Definition) *Document {
	doc := &Document{
		defs:  defs,
		index: make(map[NodeType]int, len(defs)),
	}

	for i := range defs {
		doc.index[defs[i].NodeType] = i
	}

	return doc
}

// Load decodes a node-types document from r.
func Load(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read node types: %w", err)
	}

	var defs []Definition

	err = json.Unmarshal(data, &defs)
	if err != nil {
		return nil, fmt.Errorf("decode node types: %w", err)
	}

	return NewDocument(defs), nil
}

// LoadFile decodes the node-types document at path.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open node types file: %w", err)
	}
	defer f.Close()

	doc, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	return doc, nil
}

// DefaultPath returns the conventional node-types.json location under
// dir, or under the default source directory when dir is empty.
func DefaultPath(dir string) string {
	if dir == "" {
		dir = DefaultDirectory
	}

	return filepath.Join(dir, DefaultFileName)
}

// Definitions returns the definitions in document order.
func (d *Document) Definitions() []Definition {
	return d.defs
}

// Len returns the number of definitions.
func (d *Document) Len() int {
	return len(d.defs)
}

// Lookup finds the definition for a node-type identity. The boolean is
// false when the document does not define it; the document never
// synthesizes a definition.
func (d *Document) Lookup(t NodeType) (*Definition, bool) {
	i, ok := d.index[t]
	if !ok {
		return nil, false
	}

	return &d.defs[i], true
}

// LookupNamed finds the definition for the named node type with the
// given name.
func (d *Document) LookupNamed(name string) (*Definition, bool) {
	return d.Lookup(Named(name))
}

// Supertypes returns the super-type definitions in document order.
func (d *Document) Supertypes() []Definition {
	return d.filter((*Definition).IsSupertype)
}

// Regulars returns the regular (non-terminal, non-union) definitions
// in document order.
func (d *Document) Regulars() []Definition {
	return d.filter((*Definition).IsRegular)
}

// Terminals returns the terminal definitions in document order.
func (d *Document) Terminals() []Definition {
	return d.filter((*Definition).IsTerminal)
}

func (d *Document) filter(keep func(*Definition) bool) []Definition {
	var out []Definition

	for i := range d.defs {
		if keep(&d.defs[i]) {
			out = append(out, d.defs[i])
		}
	}

	return out
}

// NodeTypeNames returns every node-type name, sorted and deduplicated
// across the named/unnamed axis.
func (d *Document) NodeTypeNames() []string {
	seen := make(map[string]struct{}, len(d.defs))

	for i := range d.defs {
		seen[d.defs[i].Type] = struct{}{}
	}

	return sortedKeys(seen)
}

// FieldNames returns the union of every field name appearing across
// all regular definitions, sorted and deduplicated.
func (d *Document) FieldNames() []string {
	seen := make(map[string]struct{})

	for i := range d.defs {
		for name := range d.defs[i].Fields {
			seen[name] = struct{}{}
		}
	}

	return sortedKeys(seen)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))

	for k := range set {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

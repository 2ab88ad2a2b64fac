package bindgen

import (
	"sort"
)

// Artifact selects which generated file an emission request describes.
type Artifact uint8

// Artifacts.
const (
	// ArtifactConstants is the name-constants file.
	ArtifactConstants Artifact = iota
	// ArtifactWrapper is the typed wrapper around the syntax tree.
	ArtifactWrapper
)

// String returns the artifact's conventional output file stem.
func (a Artifact) String() string {
	if a == ArtifactWrapper {
		return "wrapper"
	}

	return "nodes"
}

// UnitKind classifies an emission unit.
type UnitKind uint8

// Unit kinds.
const (
	UnitUnion UnitKind = iota
	UnitCompound
	UnitLeaf
)

// FieldSpec is one accessor of a compound unit.
type FieldSpec struct {
	Name        string
	Cardinality Cardinality
	TypeName    string // binding name of the target type or union
	Positional  bool   // true for the positional children pseudo-field
}

// VariantSpec is one member of a union unit. RawType is the node-type
// string a parser reports as the node kind; backends must dispatch on
// it, not on the binding name, or anonymous members never match.
type VariantSpec struct {
	Name    string // binding name
	RawType string // source node-type string
}

// Unit is one emission unit: a union, compound, or leaf type to
// generate.
type Unit struct {
	Kind      UnitKind
	Name      string // binding name
	RawType   string // source node-type string, e.g. "+" for anonymous tokens
	Named     bool
	Synthetic bool // true for synthesized anonymous unions
	Fields    []FieldSpec
	Variants  []VariantSpec
}

// Request is the backend-agnostic description handed to an emission
// backend: name tables plus ordered units. Building it is pure and
// non-failing; its only semantic decision is the stable ordering that
// keeps repeated runs byte-for-byte reproducible.
type Request struct {
	GrammarName string
	RootRule    string
	Artifact    Artifact

	SupertypeNames []string
	CompoundNames  []string
	TerminalNames  []string
	FieldNames     []string

	Units []Unit
}

// BuildRequest flattens a resolved plan into an emission request.
// Units are ordered unions first, then compounds, then leaves,
// lexicographic by binding name within each group; synthesized unions
// follow declared ones.
func BuildRequest(plan *Plan, artifact Artifact) *Request {
	req := &Request{
		GrammarName: plan.GrammarName.String(),
		RootRule:    plan.RootRule.String(),
		Artifact:    artifact,
	}

	var unions, compounds, leaves []Unit

	fieldNames := make(map[string]struct{})

	for _, shape := range plan.Shapes() {
		switch s := shape.(type) {
		case UnionNode:
			unions = append(unions, unionUnit(s))
			req.SupertypeNames = append(req.SupertypeNames, bindingName(s.NodeType))
		case CompoundNode:
			compounds = append(compounds, compoundUnit(s))
			req.CompoundNames = append(req.CompoundNames, bindingName(s.NodeType))

			for _, f := range s.Fields {
				if !f.Positional {
					fieldNames[f.Name] = struct{}{}
				}
			}
		case ValueLeaf:
			leaves = append(leaves, leafUnit(s))
			req.TerminalNames = append(req.TerminalNames, bindingName(s.NodeType))
		}
	}

	for name := range fieldNames {
		req.FieldNames = append(req.FieldNames, name)
	}

	sortUnits(unions)
	sortUnits(compounds)
	sortUnits(leaves)
	sort.Strings(req.SupertypeNames)
	sort.Strings(req.CompoundNames)
	sort.Strings(req.TerminalNames)
	sort.Strings(req.FieldNames)

	for _, u := range plan.SyntheticUnions() {
		unions = append(unions, syntheticUnit(u))
	}

	req.Units = append(req.Units, unions...)
	req.Units = append(req.Units, compounds...)
	req.Units = append(req.Units, leaves...)

	return req
}

func unionUnit(s UnionNode) Unit {
	unit := Unit{
		Kind:    UnitUnion,
		Name:    bindingName(s.NodeType),
		RawType: s.NodeType.Type,
		Named:   s.NodeType.Named,
	}

	for _, v := range s.Variants {
		unit.Variants = append(unit.Variants, VariantSpec{Name: bindingName(v), RawType: v.Type})
	}

	return unit
}

func syntheticUnit(u *SyntheticUnion) Unit {
	unit := Unit{
		Kind:      UnitUnion,
		Name:      u.Name,
		RawType:   u.Name,
		Named:     true,
		Synthetic: true,
	}

	for _, m := range u.Members {
		unit.Variants = append(unit.Variants, VariantSpec{Name: bindingName(m), RawType: m.Type})
	}

	return unit
}

func compoundUnit(s CompoundNode) Unit {
	unit := Unit{
		Kind:    UnitCompound,
		Name:    bindingName(s.NodeType),
		RawType: s.NodeType.Type,
		Named:   s.NodeType.Named,
	}

	for _, f := range s.Fields {
		spec := FieldSpec{Name: f.Name, Cardinality: f.Cardinality, Positional: f.Positional}

		switch target := f.Target.(type) {
		case TypeTarget:
			spec.TypeName = bindingName(target.NodeType)
		case UnionTarget:
			spec.TypeName = target.Union.Name
		}

		unit.Fields = append(unit.Fields, spec)
	}

	return unit
}

func leafUnit(s ValueLeaf) Unit {
	return Unit{
		Kind:    UnitLeaf,
		Name:    bindingName(s.NodeType),
		RawType: s.NodeType.Type,
		Named:   s.NodeType.Named,
	}
}

func sortUnits(units []Unit) {
	sort.Slice(units, func(i, j int) bool { return units[i].Name < units[j].Name })
}

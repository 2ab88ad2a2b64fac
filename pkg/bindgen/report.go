package bindgen

import (
	"fmt"
	"strings"
)

// IssueKind classifies a structural inconsistency between the grammar
// and node-types documents.
type IssueKind uint8

// Issue kinds.
const (
	// IssueUnresolvedSymbol: a rule references a rule name absent from
	// its own and all inherited rule tables.
	IssueUnresolvedSymbol IssueKind = iota
	// IssueUnresolvedNodeType: a field's declared type or a
	// super-type's subtype names a node type the document does not
	// define.
	IssueUnresolvedNodeType
	// IssueClassificationMismatch: the two documents disagree about
	// whether a node type is terminal, compound, or a union.
	IssueClassificationMismatch
	// IssueEmptyCardinality: a children declaration carries
	// multiple/required flags but an empty type list.
	IssueEmptyCardinality
	// IssueUnknownSupertype: a grammar-level supertype has no
	// super-type definition in the node-types document.
	IssueUnknownSupertype
	// IssueInheritance: the inherits chain names a grammar that was
	// not provided, or loops.
	IssueInheritance
)

// String returns a short name for the issue kind.
func (k IssueKind) String() string {
	switch k {
	case IssueUnresolvedSymbol:
		return "unresolved symbol"
	case IssueUnresolvedNodeType:
		return "unresolved node type"
	case IssueClassificationMismatch:
		return "classification mismatch"
	case IssueEmptyCardinality:
		return "empty cardinality"
	case IssueUnknownSupertype:
		return "unknown supertype"
	case IssueInheritance:
		return "inheritance"
	default:
		return "unknown"
	}
}

// Issue is one structural inconsistency found during unification.
type Issue struct {
	Kind    IssueKind
	Subject string // the offending identifier or node type
	Context string // where it was found in the source schema
}

// Error renders the issue as "kind `subject` (context)".
func (i Issue) Error() string {
	if i.Context == "" {
		return fmt.Sprintf("%s `%s`", i.Kind, i.Subject)
	}

	return fmt.Sprintf("%s `%s` (%s)", i.Kind, i.Subject, i.Context)
}

// Report is the aggregate unification failure: every structural
// inconsistency found in the single resolution pass. Unification never
// stops at the first problem and never yields a partial plan.
type Report struct {
	Issues []Issue
}

// Error enumerates every issue, one per line.
func (r *Report) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "schema unification failed with %d issue(s):", len(r.Issues))

	for i, issue := range r.Issues {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, issue.Error())
	}

	return b.String()
}

// Len returns the number of issues.
func (r *Report) Len() int {
	return len(r.Issues)
}

func (r *Report) add(kind IssueKind, subject, context string) {
	r.Issues = append(r.Issues, Issue{Kind: kind, Subject: subject, Context: context})
}

package tools

import (
	"fmt"

	"github.com/Comcast/casematch/core"
	"github.com/Comcast/casematch/match"

	tp "github.com/xlab/treeprint"
)

// RenderPatternTree draws the pattern as a tree, one node per
// sub-pattern.
func RenderPatternTree(p match.Pattern) string {
	t := tp.New()
	ppt(t, "", p)
	return t.String()
}

// RenderStatementTree draws each arm's pattern under the arm's label.
func RenderStatementTree(s *core.Statement) string {
	t := tp.New()
	for _, a := range s.Arms {
		label := a.Label()
		if a.Guarded() {
			label += " (guarded)"
		}
		ppt(t.AddBranch(label), "", a.Pattern)
	}
	return t.String()
}

// ppt adds a node for p.  The meta string (if any) says where p sits
// in its parent.
func ppt(t tp.Tree, meta string, p match.Pattern) {
	add := func(s string) tp.Tree {
		if meta == "" {
			return t.AddBranch(s)
		}
		return t.AddMetaBranch(meta, s)
	}
	leaf := func(s string) {
		if meta == "" {
			t.AddNode(s)
		} else {
			t.AddMetaNode(meta, s)
		}
	}

	switch vv := p.(type) {
	case *match.Literal:
		leaf("lit " + vv.Value.String())
	case *match.Wildcard:
		leaf("_")
	case *match.Capture:
		leaf("capture " + vv.Name)
	case *match.Or:
		b := add("or")
		for i, alt := range vv.Alts {
			ppt(b, fmt.Sprintf("%d", i), alt)
		}
	case *match.Sequence:
		b := add(fmt.Sprintf("sequence/%d", len(vv.Elems)))
		for i, e := range vv.Elems {
			if vv.Rest != nil && vv.Rest.At == i {
				b.AddNode(restLabel(vv.Rest))
			}
			ppt(b, fmt.Sprintf("%d", i), e)
		}
		if vv.Rest != nil && vv.Rest.At == len(vv.Elems) {
			b.AddNode(restLabel(vv.Rest))
		}
	case *match.Mapping:
		b := add("mapping")
		for _, k := range vv.Keys {
			ppt(b, k.Key, k.Pattern)
		}
		if vv.Rest != "" {
			b.AddNode("**" + vv.Rest)
		}
	case *match.Class:
		b := add("class " + vv.Tag)
		for i, sp := range vv.Positional {
			ppt(b, fmt.Sprintf("%d", i), sp)
		}
		for _, k := range vv.Keywords {
			ppt(b, k.Field+"=", k.Pattern)
		}
	case *match.As:
		b := add("as " + vv.Name)
		ppt(b, "", vv.Inner)
	default:
		leaf(fmt.Sprintf("%T", p))
	}
}

func restLabel(r *match.SeqRest) string {
	if r.Name == "" {
		return "*_"
	}
	return "*" + r.Name
}

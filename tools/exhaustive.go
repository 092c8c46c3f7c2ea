/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tools

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Comcast/casematch/core"
	"github.com/Comcast/casematch/match"
	"github.com/Comcast/casematch/value"
)

// MaxDomainSize limits IntRange.
var MaxDomainSize int64 = 1 << 16

// Shape is one member of a closed Domain.
//
// Exactly one of Value, Class, and Any is set.
type Shape struct {
	Value value.Value
	Class string
	Any   bool
}

func (s Shape) String() string {
	switch {
	case s.Any:
		return "_"
	case s.Class != "":
		return s.Class + "(...)"
	case s.Value != nil:
		return s.Value.String()
	}
	return "?"
}

// Domain is a finite set of shapes that a subject can take.
type Domain struct {
	Name   string
	Shapes []Shape
}

// Values makes a domain of the given values.
func Values(vs ...value.Value) Domain {
	d := Domain{
		Shapes: make([]Shape, len(vs)),
	}
	names := make([]string, len(vs))
	for i, v := range vs {
		d.Shapes[i] = Shape{Value: v}
		names[i] = v.String()
	}
	d.Name = "{" + strings.Join(names, ", ") + "}"
	return d
}

// IntRange makes the domain of integers from lo to hi inclusive.
func IntRange(lo, hi int64) (Domain, error) {
	if hi < lo {
		return Domain{}, fmt.Errorf("empty range %d..%d", lo, hi)
	}
	// Unsigned so that a wide range can't overflow.
	span := uint64(hi) - uint64(lo)
	if uint64(MaxDomainSize) <= span {
		return Domain{}, fmt.Errorf("range %d..%d is too large", lo, hi)
	}
	d := Domain{
		Name:   fmt.Sprintf("%d..%d", lo, hi),
		Shapes: make([]Shape, 0, span+1),
	}
	for i := uint64(0); i <= span; i++ {
		d.Shapes = append(d.Shapes, Shape{Value: value.Int(lo + int64(i))})
	}
	return d, nil
}

func Bools() Domain {
	d := Values(value.Bool(false), value.Bool(true))
	d.Name = "bool"
	return d
}

// ClassDomain makes the domain of the concrete classes under root.
//
// The hierarchy is taken to be closed: the registered leaves under
// root are the only shapes.
func ClassDomain(reg *value.Registry, root string) (Domain, error) {
	if reg == nil {
		reg = value.DefaultRegistry
	}
	if _, have := reg.Lookup(root); !have {
		return Domain{}, &value.UnknownClass{Tag: root}
	}
	leaves := reg.Leaves(root)
	d := Domain{
		Name:   root,
		Shapes: make([]Shape, len(leaves)),
	}
	for i, tag := range leaves {
		d.Shapes[i] = Shape{Class: tag}
	}
	return d, nil
}

// AnyValue is the open domain.  Only an irrefutable pattern covers
// it.
func AnyValue() Domain {
	return Domain{
		Name:   "any",
		Shapes: []Shape{{Any: true}},
	}
}

// ParseDomain reads a domain given as
//
//	any
//	bool
//	int:LO..HI
//	class:TAG
//	values:JSON_ARRAY
func ParseDomain(s string, reg *value.Registry) (Domain, error) {
	switch s {
	case "any":
		return AnyValue(), nil
	case "bool":
		return Bools(), nil
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return Domain{}, fmt.Errorf("bad domain '%s'", s)
	}
	switch parts[0] {
	case "int":
		bounds := strings.SplitN(parts[1], "..", 2)
		if len(bounds) != 2 {
			return Domain{}, fmt.Errorf("bad range '%s'", parts[1])
		}
		lo, err := strconv.ParseInt(bounds[0], 10, 64)
		if err != nil {
			return Domain{}, err
		}
		hi, err := strconv.ParseInt(bounds[1], 10, 64)
		if err != nil {
			return Domain{}, err
		}
		return IntRange(lo, hi)
	case "class":
		return ClassDomain(reg, parts[1])
	case "values":
		var xs []interface{}
		if err := value.DecodeJSON([]byte(parts[1]), &xs); err != nil {
			return Domain{}, err
		}
		vs := make([]value.Value, len(xs))
		for i, x := range xs {
			v, err := value.FromInterface(x)
			if err != nil {
				return Domain{}, err
			}
			vs[i] = v
		}
		return Values(vs...), nil
	}
	return Domain{}, errors.New("unknown domain kind '" + parts[0] + "'")
}

// ArmCoverage describes one arm's contribution.
type ArmCoverage struct {
	Index  int      `json:"index" yaml:"index"`
	Arm    string   `json:"arm" yaml:"arm"`
	Shapes []string `json:"shapes,omitempty" yaml:",omitempty"`
}

// Coverage is the advisor's report.
type Coverage struct {
	Domain string `json:"domain" yaml:"domain"`

	// Exhaustive is true when the unguarded arms cover every
	// shape in the domain.
	Exhaustive bool `json:"exhaustive" yaml:"exhaustive"`

	// Gaps are the shapes that no unguarded arm covers.
	Gaps []string `json:"gaps,omitempty" yaml:",omitempty"`

	// Partial lists the guarded arms along with the remaining
	// shapes that their patterns cover.  Whether the guards
	// accept can't be known statically.
	Partial []ArmCoverage `json:"partial,omitempty" yaml:",omitempty"`

	// Covering lists the unguarded arms along with the shapes
	// they removed.
	Covering []ArmCoverage `json:"covering,omitempty" yaml:",omitempty"`

	// Unreachable lists arms that follow complete coverage.
	Unreachable []ArmCoverage `json:"unreachable,omitempty" yaml:",omitempty"`
}

// CheckExhaustive walks the arms in order, removing the shapes that
// each unguarded arm's pattern provably covers.
//
// This check is only advice.  It never changes what
// Statement.Select does.
func CheckExhaustive(arms []*core.Arm, d Domain, reg *value.Registry) *Coverage {
	if reg == nil {
		reg = value.DefaultRegistry
	}
	m := &match.Matcher{
		Classes: reg,
	}

	c := &Coverage{
		Domain: d.Name,
	}

	remaining := make([]Shape, len(d.Shapes))
	copy(remaining, d.Shapes)

	for i, a := range arms {
		ac := ArmCoverage{
			Index: i,
			Arm:   a.Label(),
		}

		if len(remaining) == 0 {
			c.Unreachable = append(c.Unreachable, ac)
			continue
		}

		var (
			covered []string
			rest    = remaining[:0:0]
		)
		for _, s := range remaining {
			if subsumes(m, reg, a.Pattern, s) {
				covered = append(covered, s.String())
			} else {
				rest = append(rest, s)
			}
		}
		ac.Shapes = covered

		if a.Guarded() {
			c.Partial = append(c.Partial, ac)
			continue
		}

		if 0 < len(covered) {
			c.Covering = append(c.Covering, ac)
		}
		remaining = rest
	}

	c.Exhaustive = len(remaining) == 0
	for _, s := range remaining {
		c.Gaps = append(c.Gaps, s.String())
	}

	return c
}

// subsumes reports whether p matches every subject that has the
// given shape.
func subsumes(m *match.Matcher, reg *value.Registry, p match.Pattern, s Shape) bool {
	if match.Irrefutable(p) {
		return true
	}

	switch {
	case s.Any:
		return false
	case s.Value != nil:
		ok, err := m.Matches(p, s.Value)
		return err == nil && ok
	}

	switch vv := p.(type) {
	case *match.Or:
		for _, alt := range vv.Alts {
			if subsumes(m, reg, alt, s) {
				return true
			}
		}
		return false
	case *match.As:
		return subsumes(m, reg, vv.Inner, s)
	case *match.Class:
		if !reg.IsSubclass(s.Class, vv.Tag) {
			return false
		}
		c, have := reg.Lookup(s.Class)
		if !have || len(c.Positional) < len(vv.Positional) {
			return false
		}
		for _, sp := range vv.Positional {
			if !match.Irrefutable(sp) {
				return false
			}
		}
		// A keyword field outside the positional spec might be
		// absent.
		for _, k := range vv.Keywords {
			if !match.Irrefutable(k.Pattern) || !contains(c.Positional, k.Field) {
				return false
			}
		}
		return true
	}
	return false
}

func contains(xs []string, x string) bool {
	for _, y := range xs {
		if x == y {
			return true
		}
	}
	return false
}

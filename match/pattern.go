/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

package match

import (
	"strconv"
	"strings"

	"github.com/Comcast/casematch/value"
)

// Pattern is a structural template for values.
//
// The set of patterns is closed: Literal, Wildcard, Capture, Or,
// Sequence, Mapping, Class, and As.  Patterns are immutable once
// built.
type Pattern interface {
	// Captures returns the names this pattern binds on success,
	// in binding order.
	Captures() []string

	String() string

	pattern()
}

// Literal matches values structurally equal to Value.
type Literal struct {
	Value value.Value
}

// Wildcard matches anything and binds nothing.
type Wildcard struct{}

// Capture matches anything and binds it to Name.
type Capture struct {
	Name string
}

// Or matches if any alternative matches.  Alternatives are tried in
// order.
type Or struct {
	Alts []Pattern
}

// SeqRest is the rest marker of a Sequence pattern.
type SeqRest struct {
	// At is the position of the marker among the fixed elements.
	At int

	// Name receives the remaining sub-sequence.  An empty Name
	// discards it.
	Name string
}

// Sequence matches a value.Seq element-wise.
//
// Without a Rest marker, the arity must be exact.  With one, the
// subject needs at least len(Elems) elements.
type Sequence struct {
	Elems []Pattern
	Rest  *SeqRest
}

// KeyPattern is one required key of a Mapping pattern.
type KeyPattern struct {
	Key     string
	Pattern Pattern
}

// Mapping matches a value.Map that has (at least) all the given Keys.
//
// Other keys are ignored unless Rest names a capture for them.
type Mapping struct {
	Keys []KeyPattern
	Rest string
}

// FieldPattern is one keyword sub-pattern of a Class pattern.
type FieldPattern struct {
	Field   string
	Pattern Pattern
}

// Class matches an *value.Object of class Tag (or a registered
// subclass).
//
// Positional sub-patterns address fields via the class's registered
// positional spec.  Keywords address fields by name.
type Class struct {
	Tag        string
	Positional []Pattern
	Keywords   []FieldPattern
}

// As matches if Inner matches and also binds the whole value to Name.
type As struct {
	Inner Pattern
	Name  string
}

func (*Literal) pattern()  {}
func (*Wildcard) pattern() {}
func (*Capture) pattern()  {}
func (*Or) pattern()       {}
func (*Sequence) pattern() {}
func (*Mapping) pattern()  {}
func (*Class) pattern()    {}
func (*As) pattern()       {}

func (*Literal) Captures() []string  { return nil }
func (*Wildcard) Captures() []string { return nil }
func (p *Capture) Captures() []string {
	return []string{p.Name}
}

// Captures of an Or are those of its first alternative.  Validation
// ensures that all the alternatives agree.
func (p *Or) Captures() []string {
	if len(p.Alts) == 0 || p.Alts[0] == nil {
		return nil
	}
	return p.Alts[0].Captures()
}

func (p *Sequence) Captures() []string {
	var acc []string
	for i, e := range p.Elems {
		if p.Rest != nil && p.Rest.At == i && p.Rest.Name != "" {
			acc = append(acc, p.Rest.Name)
		}
		acc = appendCaptures(acc, e)
	}
	if p.Rest != nil && p.Rest.At == len(p.Elems) && p.Rest.Name != "" {
		acc = append(acc, p.Rest.Name)
	}
	return acc
}

func (p *Mapping) Captures() []string {
	var acc []string
	for _, k := range p.Keys {
		acc = appendCaptures(acc, k.Pattern)
	}
	if p.Rest != "" {
		acc = append(acc, p.Rest)
	}
	return acc
}

func (p *Class) Captures() []string {
	var acc []string
	for _, sp := range p.Positional {
		acc = appendCaptures(acc, sp)
	}
	for _, k := range p.Keywords {
		acc = appendCaptures(acc, k.Pattern)
	}
	return acc
}

func (p *As) Captures() []string {
	return append(appendCaptures(nil, p.Inner), p.Name)
}

func appendCaptures(acc []string, p Pattern) []string {
	if p == nil {
		return acc
	}
	return append(acc, p.Captures()...)
}

func (p *Literal) String() string { return p.Value.String() }
func (*Wildcard) String() string  { return "_" }
func (p *Capture) String() string { return p.Name }

func (p *Or) String() string {
	return strings.Join(patternStrings(p.Alts), " | ")
}

func (p *Sequence) String() string {
	acc := patternStrings(p.Elems)
	if p.Rest != nil && 0 <= p.Rest.At && p.Rest.At <= len(acc) {
		name := p.Rest.Name
		if name == "" {
			name = "_"
		}
		acc = append(acc[:p.Rest.At], append([]string{"*" + name}, acc[p.Rest.At:]...)...)
	}
	return "[" + strings.Join(acc, ", ") + "]"
}

func (p *Mapping) String() string {
	acc := make([]string, 0, len(p.Keys)+1)
	for _, k := range p.Keys {
		acc = append(acc, strconv.Quote(k.Key)+": "+patternString(k.Pattern))
	}
	if p.Rest != "" {
		acc = append(acc, "**"+p.Rest)
	}
	return "{" + strings.Join(acc, ", ") + "}"
}

func (p *Class) String() string {
	acc := patternStrings(p.Positional)
	for _, k := range p.Keywords {
		acc = append(acc, k.Field+"="+patternString(k.Pattern))
	}
	return p.Tag + "(" + strings.Join(acc, ", ") + ")"
}

func (p *As) String() string {
	inner := patternString(p.Inner)
	if _, is := p.Inner.(*Or); is {
		inner = "(" + inner + ")"
	}
	return inner + " as " + p.Name
}

func patternString(p Pattern) string {
	if p == nil {
		return "<nil>"
	}
	return p.String()
}

func patternStrings(ps []Pattern) []string {
	acc := make([]string, len(ps))
	for i, p := range ps {
		acc[i] = patternString(p)
	}
	return acc
}

// Constructors.  Each one validates what it can without a class
// registry; NewClass checks the registry too.

// Lit makes a Literal.  A nil value is taken as value.Unit.
func Lit(v value.Value) Pattern {
	if v == nil {
		v = value.Unit{}
	}
	return &Literal{v}
}

// Wild makes a Wildcard.
func Wild() Pattern {
	return &Wildcard{}
}

// Bind makes a Capture.
func Bind(name string) (Pattern, error) {
	p := &Capture{name}
	if err := Validate(p, nil); err != nil {
		return nil, err
	}
	return p, nil
}

// NewOr makes an Or.
func NewOr(alts ...Pattern) (Pattern, error) {
	p := &Or{append([]Pattern(nil), alts...)}
	if err := Validate(p, nil); err != nil {
		return nil, err
	}
	return p, nil
}

// NewSequence makes a Sequence without a rest marker.
func NewSequence(elems ...Pattern) (Pattern, error) {
	return NewStarSequence(nil, elems...)
}

// NewStarSequence makes a Sequence with an optional rest marker.
func NewStarSequence(rest *SeqRest, elems ...Pattern) (Pattern, error) {
	p := &Sequence{
		Elems: append([]Pattern(nil), elems...),
	}
	if rest != nil {
		r := *rest
		p.Rest = &r
	}
	if err := Validate(p, nil); err != nil {
		return nil, err
	}
	return p, nil
}

// NewMapping makes a Mapping.  The rest name may be empty.
func NewMapping(keys []KeyPattern, rest string) (Pattern, error) {
	p := &Mapping{
		Keys: append([]KeyPattern(nil), keys...),
		Rest: rest,
	}
	if err := Validate(p, nil); err != nil {
		return nil, err
	}
	return p, nil
}

// NewClass makes a Class pattern.
//
// The tag must be registered in the given registry (or
// value.DefaultRegistry if nil), and the positional sub-patterns
// can't outnumber the class's positional spec.
func NewClass(reg *value.Registry, tag string, positional []Pattern, keywords ...FieldPattern) (Pattern, error) {
	if reg == nil {
		reg = value.DefaultRegistry
	}
	p := &Class{
		Tag:        tag,
		Positional: append([]Pattern(nil), positional...),
		Keywords:   append([]FieldPattern(nil), keywords...),
	}
	if err := Validate(p, reg); err != nil {
		return nil, err
	}
	return p, nil
}

// NewAs makes an As.
func NewAs(inner Pattern, name string) (Pattern, error) {
	p := &As{
		Inner: inner,
		Name:  name,
	}
	if err := Validate(p, nil); err != nil {
		return nil, err
	}
	return p, nil
}

// Must panics if given an error.  Otherwise it returns the pattern.
//
//	p := match.Must(match.NewOr(match.Lit(value.Int(0)), match.Lit(value.Int(1))))
func Must(p Pattern, err error) Pattern {
	if err != nil {
		panic(err)
	}
	return p
}

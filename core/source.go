package core

import (
	"context"

	"github.com/Comcast/casematch/match"
	"github.com/Comcast/casematch/value"
)

// StatementSource is the data form of a Statement.
//
// Patterns use the encoding that match.Decode accepts.  Classes
// declares the classes those patterns need.
type StatementSource struct {
	Name    string        `json:"name,omitempty" yaml:",omitempty"`
	Doc     string        `json:"doc,omitempty" yaml:",omitempty"`
	Classes []ClassSource `json:"classes,omitempty" yaml:",omitempty"`
	Arms    []ArmSource   `json:"arms" yaml:"arms"`
}

// ClassSource declares a class for the registry.
//
// Supertypes must be declared first.
type ClassSource struct {
	Tag        string   `json:"tag" yaml:"tag"`
	Positional []string `json:"positional,omitempty" yaml:",omitempty"`
	Supers     []string `json:"supers,omitempty" yaml:",omitempty"`
}

// ArmSource is the data form of an Arm.
type ArmSource struct {
	Name    string      `json:"name,omitempty" yaml:",omitempty"`
	Doc     string      `json:"doc,omitempty" yaml:",omitempty"`
	Pattern interface{} `json:"pattern" yaml:"pattern"`
	Guard   *Source     `json:"guard,omitempty" yaml:",omitempty"`
	Body    *Source     `json:"body,omitempty" yaml:",omitempty"`
}

// ParseStatementSource parses JSON.
func ParseStatementSource(js []byte) (*StatementSource, error) {
	var src StatementSource
	if err := value.DecodeJSON(js, &src); err != nil {
		return nil, err
	}
	return &src, nil
}

// RegisterClasses adds the declared classes to the registry
// (value.DefaultRegistry if nil).
func (src *StatementSource) RegisterClasses(reg *value.Registry) error {
	if reg == nil {
		reg = value.DefaultRegistry
	}
	for _, c := range src.Classes {
		if err := reg.Register(c.Tag, c.Positional, c.Supers...); err != nil {
			return err
		}
	}
	return nil
}

// Statement registers the source's classes, decodes the patterns,
// and returns the compiled Statement.
//
// The work is done against a copy of the registry.  The classes only
// reach reg once the whole statement has compiled, so a bad source
// leaves reg as it was.
func (src *StatementSource) Statement(ctx context.Context, reg *value.Registry, interpreters map[string]Interpreter) (*Statement, error) {
	if reg == nil {
		reg = value.DefaultRegistry
	}

	scratch := reg.Copy()
	if err := src.RegisterClasses(scratch); err != nil {
		return nil, err
	}

	s := &Statement{
		Name: src.Name,
		Doc:  src.Doc,
		Arms: make([]*Arm, len(src.Arms)),
	}

	for i, as := range src.Arms {
		p, err := match.Decode(as.Pattern, scratch)
		if err != nil {
			return nil, &BadArm{
				Statement: src.Name,
				Index:     i,
				Name:      as.Name,
				Err:       err,
			}
		}
		s.Arms[i] = &Arm{
			Name:        as.Name,
			Doc:         as.Doc,
			Pattern:     p,
			GuardSource: as.Guard.Copy(),
			BodySource:  as.Body.Copy(),
		}
	}

	if err := s.Compile(ctx, scratch, interpreters, true); err != nil {
		return nil, err
	}

	if err := src.RegisterClasses(reg); err != nil {
		return nil, err
	}
	s.matcher = &match.Matcher{
		Classes: reg,
	}

	return s, nil
}

// Source returns the data form of the Statement.
//
// The classes that the patterns use (and their supertypes) are
// declared if the Statement has been compiled.  Guards and bodies
// that are only Go functions don't survive.
func (s *Statement) Source() *StatementSource {
	src := &StatementSource{
		Name: s.Name,
		Doc:  s.Doc,
		Arms: make([]ArmSource, len(s.Arms)),
	}

	if reg := s.Classes(); reg != nil {
		seen := make(map[string]bool)
		var declare func(tag string)
		declare = func(tag string) {
			if seen[tag] {
				return
			}
			seen[tag] = true
			c, have := reg.Lookup(tag)
			if !have {
				return
			}
			for _, super := range c.Supers {
				declare(super)
			}
			src.Classes = append(src.Classes, ClassSource{
				Tag:        c.Tag,
				Positional: c.Positional,
				Supers:     c.Supers,
			})
		}
		for _, a := range s.Arms {
			match.Walk(a.Pattern, func(p match.Pattern) {
				if c, is := p.(*match.Class); is {
					declare(c.Tag)
				}
			})
		}
	}

	for i, a := range s.Arms {
		src.Arms[i] = ArmSource{
			Name:    a.Name,
			Doc:     a.Doc,
			Pattern: match.Encode(a.Pattern),
			Guard:   a.GuardSource.Copy(),
			Body:    a.BodySource.Copy(),
		}
	}
	return src
}

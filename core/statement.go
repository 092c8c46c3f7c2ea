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

package core

import (
	"context"
	"errors"

	"github.com/Comcast/casematch/match"
	"github.com/Comcast/casematch/value"
)

// Statement is an ordered list of arms.
//
// Arm order is significant.  Arms are never reordered or
// deduplicated.
//
// If a statement includes arms with GuardSources or BodySources, then
// the statement must be Compiled before use.  (Actually every
// Statement must be compiled before use since compilation is what
// validates the patterns.)
type Statement struct {
	// Name is the name for this statement.  Something like
	// "factorial".
	Name string `json:"name,omitempty" yaml:",omitempty"`

	// Doc is general documentation about what this statement
	// does.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	Arms []*Arm `json:"arms,omitempty" yaml:",omitempty"`

	matcher  *match.Matcher
	compiled bool
}

// Arm is one case of a Statement.
type Arm struct {
	// Name is optional.  Used in traces, errors, and reports.
	Name string `json:"name,omitempty" yaml:",omitempty"`

	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Pattern is matched against the subject.
	Pattern match.Pattern `json:"-" yaml:"-"`

	// Guard is an optional procedure that will reject the arm if
	// it returns false.
	Guard Guard `json:"-" yaml:"-"`

	// GuardSource, if given, can be compiled to a Guard.
	GuardSource *Source `json:"guard,omitempty" yaml:"guard,omitempty"`

	// Body computes the result when this arm wins.  A nil Body
	// results in a nil result.
	Body Body `json:"-" yaml:"-"`

	// BodySource, if given, can be compiled to a Body.
	BodySource *Source `json:"body,omitempty" yaml:"body,omitempty"`
}

// Guarded reports whether the arm has a guard (compiled or not).
func (a *Arm) Guarded() bool {
	return a.Guard != nil || a.GuardSource != nil
}

// Label returns the arm's name or, lacking a name, its pattern.
func (a *Arm) Label() string {
	if a.Name != "" {
		return a.Name
	}
	if a.Pattern == nil {
		return "<nil>"
	}
	return "case " + a.Pattern.String()
}

// Copy doesn't actually copy the Pattern, Guard, or Body, which are
// immutable.
func (a *Arm) Copy() *Arm {
	if a == nil {
		return nil
	}
	return &Arm{
		Name:        a.Name,
		Doc:         a.Doc,
		Pattern:     a.Pattern,
		Guard:       a.Guard,
		GuardSource: a.GuardSource.Copy(),
		Body:        a.Body,
		BodySource:  a.BodySource.Copy(),
	}
}

// Copy makes a copy of the Statement.  The copy needs to be compiled.
func (s *Statement) Copy() *Statement {
	arms := make([]*Arm, len(s.Arms))
	for i, a := range s.Arms {
		arms[i] = a.Copy()
	}
	return &Statement{
		Name: s.Name,
		Doc:  s.Doc,
		Arms: arms,
	}
}

// Compiled reports whether the statement has been compiled.
func (s *Statement) Compiled() bool {
	return s.compiled
}

// Classes returns the registry that this statement was compiled
// against (if any).
func (s *Statement) Classes() *value.Registry {
	if s.matcher == nil {
		return nil
	}
	return s.matcher.Classes
}

// Compile validates every pattern against the given class registry
// (value.DefaultRegistry if nil) and compiles guard and body sources
// with the given interpreters (DefaultInterpreters if nil).
//
// Sources are compiled if the corresponding Guard or Body is nil or
// if force is true.
//
// Construction errors are reported here, never during matching.
func (s *Statement) Compile(ctx context.Context, reg *value.Registry, interpreters map[string]Interpreter, force bool) error {
	if reg == nil {
		reg = value.DefaultRegistry
	}

	// Nothing changes unless every arm compiles.
	var (
		guards = make([]Guard, len(s.Arms))
		bodies = make([]Body, len(s.Arms))
	)

	for i, a := range s.Arms {
		fail := func(err error) error {
			return &BadArm{
				Statement: s.Name,
				Index:     i,
				Name:      a.Name,
				Err:       err,
			}
		}

		if a == nil {
			return fail(errors.New("nil arm"))
		}

		if err := match.Validate(a.Pattern, reg); err != nil {
			return fail(err)
		}

		guards[i], bodies[i] = a.Guard, a.Body

		if a.GuardSource != nil && (force || a.Guard == nil) {
			guard, err := a.GuardSource.CompileGuard(ctx, interpreters, a.Label())
			if err != nil {
				return fail(err)
			}
			guards[i] = guard
		}

		if a.BodySource != nil && (force || a.Body == nil) {
			body, err := a.BodySource.CompileBody(ctx, interpreters)
			if err != nil {
				return fail(err)
			}
			bodies[i] = body
		}
	}

	for i, a := range s.Arms {
		a.Guard, a.Body = guards[i], bodies[i]
	}

	s.matcher = &match.Matcher{
		Classes: reg,
	}
	s.compiled = true

	return nil
}

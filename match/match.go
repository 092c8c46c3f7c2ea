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

// Package match implements the core pattern matcher.
//
// A Pattern is matched against a value.Value.  A successful match
// produces Bindings, which map capture names to the sub-values they
// matched.
//
// Matching is linear: every sub-pattern is tried at most once per
// sub-value, and the first failure ends the attempt.  The only
// alternation is Or, which tries its alternatives left to right and
// stops at the first success.
package match

import (
	"github.com/Comcast/casematch/value"
)

type Matcher struct {
	// Classes resolves class patterns.  If nil, the matcher uses
	// value.DefaultRegistry.
	Classes *value.Registry
}

var DefaultMatcher = &Matcher{}

func (m *Matcher) classes() *value.Registry {
	if m.Classes == nil {
		return value.DefaultRegistry
	}
	return m.Classes
}

// Attempt matches the value against the pattern.
//
// Returns fresh Bindings on success and nil Bindings if there's no
// match.  An error is returned only if the pattern breaks a
// construction invariant that Validate would have reported (a
// BindingCollision or an UnknownClassPattern); that's never "no
// match".
func (m *Matcher) Attempt(p Pattern, v value.Value) (*Bindings, error) {
	bs := NewBindings()
	ok, err := m.match(p, v, bs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return bs, nil
}

// Matches reports whether the pattern matches the value.
func (m *Matcher) Matches(p Pattern, v value.Value) (bool, error) {
	bs, err := m.Attempt(p, v)
	return bs != nil, err
}

// Attempt uses the DefaultMatcher.
func Attempt(p Pattern, v value.Value) (*Bindings, error) {
	return DefaultMatcher.Attempt(p, v)
}

// match extends the given bindings (which are modified).
//
// On a false return, bindings added during this call have been
// removed.
func (m *Matcher) match(p Pattern, v value.Value, bs *Bindings) (bool, error) {
	mark := bs.mark()
	ok, err := m.dispatch(p, v, bs)
	if err != nil || !ok {
		bs.rollback(mark)
	}
	return ok, err
}

func (m *Matcher) dispatch(p Pattern, v value.Value, bs *Bindings) (bool, error) {
	switch vv := p.(type) {
	case *Literal:
		return value.Equal(vv.Value, v), nil

	case *Wildcard:
		return true, nil

	case *Capture:
		return true, bs.Bind(vv.Name, v)

	case *Or:
		for _, alt := range vv.Alts {
			ok, err := m.match(alt, v, bs)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case *Sequence:
		return m.matchSequence(vv, v, bs)

	case *Mapping:
		return m.matchMapping(vv, v, bs)

	case *Class:
		return m.matchClass(vv, v, bs)

	case *As:
		ok, err := m.match(vv.Inner, v, bs)
		if err != nil || !ok {
			return false, err
		}
		return true, bs.Bind(vv.Name, v)
	}

	return false, ErrNilPattern
}

func (m *Matcher) matchSequence(p *Sequence, v value.Value, bs *Bindings) (bool, error) {
	xs, is := v.(value.Seq)
	if !is {
		return false, nil
	}

	if p.Rest == nil {
		if len(xs) != len(p.Elems) {
			return false, nil
		}
		return m.matchElems(p.Elems, xs, bs)
	}

	if len(xs) < len(p.Elems) {
		return false, nil
	}

	var (
		at     = p.Rest.At
		before = p.Elems[:at]
		after  = p.Elems[at:]
		end    = len(xs) - len(after)
	)

	if ok, err := m.matchElems(before, xs[:at], bs); err != nil || !ok {
		return false, err
	}
	if p.Rest.Name != "" {
		rest := make(value.Seq, end-at)
		copy(rest, xs[at:end])
		if err := bs.Bind(p.Rest.Name, rest); err != nil {
			return false, err
		}
	}
	return m.matchElems(after, xs[end:], bs)
}

func (m *Matcher) matchElems(ps []Pattern, xs value.Seq, bs *Bindings) (bool, error) {
	for i, p := range ps {
		if ok, err := m.match(p, xs[i], bs); err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (m *Matcher) matchMapping(p *Mapping, v value.Value, bs *Bindings) (bool, error) {
	fm, is := v.(value.Map)
	if !is {
		return false, nil
	}

	for _, k := range p.Keys {
		fv, found := fm[k.Key]
		if !found {
			return false, nil
		}
		if ok, err := m.match(k.Pattern, fv, bs); err != nil || !ok {
			return false, err
		}
	}

	if p.Rest != "" {
		rest := make(value.Map, len(fm))
		for k, fv := range fm {
			rest[k] = fv
		}
		for _, k := range p.Keys {
			delete(rest, k.Key)
		}
		if err := bs.Bind(p.Rest, rest); err != nil {
			return false, err
		}
	}

	return true, nil
}

func (m *Matcher) matchClass(p *Class, v value.Value, bs *Bindings) (bool, error) {
	reg := m.classes()

	if _, have := reg.Lookup(p.Tag); !have {
		return false, &UnknownClassPattern{p.Tag}
	}

	o, is := v.(*value.Object)
	if !is || o == nil {
		return false, nil
	}

	if !reg.IsSubclass(o.Class, p.Tag) {
		return false, nil
	}

	if 0 < len(p.Positional) {
		// Positions resolve against the subject's own class,
		// which might be a subclass with a different spec.
		c, have := reg.Lookup(o.Class)
		if !have || len(c.Positional) < len(p.Positional) {
			return false, nil
		}
		for i, sp := range p.Positional {
			fv, found := o.Fields[c.Positional[i]]
			if !found {
				return false, nil
			}
			if ok, err := m.match(sp, fv, bs); err != nil || !ok {
				return false, err
			}
		}
	}

	for _, k := range p.Keywords {
		fv, found := o.Fields[k.Field]
		if !found {
			return false, nil
		}
		if ok, err := m.match(k.Pattern, fv, bs); err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

// Irrefutable reports whether the pattern matches every value.
//
// Wildcards and captures are irrefutable, as is an As around an
// irrefutable pattern and an Or with an irrefutable alternative.
func Irrefutable(p Pattern) bool {
	switch vv := p.(type) {
	case *Wildcard, *Capture:
		return true
	case *As:
		return Irrefutable(vv.Inner)
	case *Or:
		for _, alt := range vv.Alts {
			if Irrefutable(alt) {
				return true
			}
		}
	}
	return false
}

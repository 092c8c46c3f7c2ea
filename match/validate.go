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
	"sort"
	"strings"

	"github.com/Comcast/casematch/value"
)

// Validate checks a whole pattern tree for construction errors.
//
// If reg is nil, class patterns are not checked against a registry.
// Statement compilation always provides one, so a compiled statement
// can never fail structurally during matching.
func Validate(p Pattern, reg *value.Registry) error {
	if err := check(p, reg); err != nil {
		return err
	}
	seen := make(map[string]bool, 8)
	for _, name := range p.Captures() {
		if seen[name] {
			return &DuplicateCapture{name}
		}
		seen[name] = true
	}
	return nil
}

func checkName(name string) error {
	if name == "" || name == "_" || strings.HasPrefix(name, "*") {
		return &BadCaptureName{name}
	}
	return nil
}

// check looks for everything except duplicate captures across the
// tree, which Validate does once at the top.
//
// Duplicates within the alternatives of an Or are still checked here
// since Captures only reports the first alternative.
func check(p Pattern, reg *value.Registry) error {
	switch vv := p.(type) {
	case nil:
		return ErrNilPattern

	case *Literal:
		if vv == nil || vv.Value == nil {
			return ErrNilPattern
		}
		return nil

	case *Wildcard:
		return nil

	case *Capture:
		if vv == nil {
			return ErrNilPattern
		}
		return checkName(vv.Name)

	case *Or:
		if vv == nil {
			return ErrNilPattern
		}
		if len(vv.Alts) == 0 {
			return ErrEmptyOr
		}
		var want []string
		for i, alt := range vv.Alts {
			if err := Validate(alt, reg); err != nil {
				return err
			}
			got := sortedSet(alt.Captures())
			if i == 0 {
				want = got
				continue
			}
			if !sameSet(want, got) {
				return &InconsistentOr{
					Want: want,
					Got:  got,
					Alt:  i,
				}
			}
		}
		return nil

	case *Sequence:
		if vv == nil {
			return ErrNilPattern
		}
		if vv.Rest != nil {
			if vv.Rest.At < 0 || len(vv.Elems) < vv.Rest.At {
				return &BadRest{vv.Rest.At, len(vv.Elems)}
			}
			if vv.Rest.Name != "" {
				if err := checkName(vv.Rest.Name); err != nil {
					return err
				}
			}
		}
		for _, e := range vv.Elems {
			if err := check(e, reg); err != nil {
				return err
			}
		}
		return nil

	case *Mapping:
		if vv == nil {
			return ErrNilPattern
		}
		seen := make(map[string]bool, len(vv.Keys))
		for _, k := range vv.Keys {
			if seen[k.Key] {
				return &DuplicateKey{k.Key}
			}
			seen[k.Key] = true
			if strings.HasPrefix(k.Key, "@") {
				return &ReservedKey{k.Key}
			}
			if err := check(k.Pattern, reg); err != nil {
				return err
			}
		}
		if vv.Rest != "" {
			return checkName(vv.Rest)
		}
		return nil

	case *Class:
		if vv == nil {
			return ErrNilPattern
		}
		seen := make(map[string]bool, len(vv.Positional)+len(vv.Keywords))
		if reg != nil {
			c, have := reg.Lookup(vv.Tag)
			if !have {
				return &UnknownClassPattern{vv.Tag}
			}
			if len(c.Positional) < len(vv.Positional) {
				return &PositionalArity{
					Tag:  vv.Tag,
					Have: len(vv.Positional),
					Max:  len(c.Positional),
				}
			}
			for i := range vv.Positional {
				seen[c.Positional[i]] = true
			}
		}
		for _, sp := range vv.Positional {
			if err := check(sp, reg); err != nil {
				return err
			}
		}
		for _, k := range vv.Keywords {
			if seen[k.Field] {
				return &DuplicateKey{k.Field}
			}
			seen[k.Field] = true
			if strings.HasPrefix(k.Field, "@") {
				return &ReservedKey{k.Field}
			}
			if err := check(k.Pattern, reg); err != nil {
				return err
			}
		}
		return nil

	case *As:
		if vv == nil {
			return ErrNilPattern
		}
		if err := checkName(vv.Name); err != nil {
			return err
		}
		return check(vv.Inner, reg)
	}

	return ErrNilPattern
}

func sortedSet(xs []string) []string {
	acc := append([]string(nil), xs...)
	sort.Strings(acc)
	return acc
}

func sameSet(xs, ys []string) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if xs[i] != ys[i] {
			return false
		}
	}
	return true
}

// Walk calls f on the pattern and then on each of its sub-patterns,
// depth first and left to right.
func Walk(p Pattern, f func(Pattern)) {
	if p == nil {
		return
	}
	f(p)
	switch vv := p.(type) {
	case *Or:
		for _, alt := range vv.Alts {
			Walk(alt, f)
		}
	case *Sequence:
		for _, e := range vv.Elems {
			Walk(e, f)
		}
	case *Mapping:
		for _, k := range vv.Keys {
			Walk(k.Pattern, f)
		}
	case *Class:
		for _, sp := range vv.Positional {
			Walk(sp, f)
		}
		for _, k := range vv.Keywords {
			Walk(k.Pattern, f)
		}
	case *As:
		Walk(vv.Inner, f)
	}
}

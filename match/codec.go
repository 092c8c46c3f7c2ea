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

// Patterns as plain data (from JSON or YAML).
//
// Strings starting with a '?' are variables:
//
//   "?"  or "_"       wildcard
//   "?x"              capture x
//   "?*xs" or "?*"    rest marker (only as a sequence element)
//
// Other strings, numbers, booleans, and null are literals.  Arrays
// are sequence patterns.  Maps are mapping patterns unless they use
// one of these directives:
//
//   {"@lit": X}                       literal X (any value)
//   {"@or": [P, ...]}                 or-pattern
//   {"@as": "?x", "@pattern": P}      as-binding
//   {"@class": "Tag", "@args": [P, ...], "field": P, ...}
//                                     class pattern
//
// A mapping pattern can have "@rest": "?x" to capture the other keys.

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Comcast/casematch/value"
)

// Directives used in encoded patterns.
const (
	LitKey     = "@lit"
	OrKey      = "@or"
	AsKey      = "@as"
	InnerKey   = "@pattern"
	ClassKey   = value.ClassKey
	ArgsKey    = "@args"
	RestKey    = "@rest"
	restPrefix = "?*"
)

// IsVariable reports if the string represents a pattern variable.
//
// All pattern variables start with a '?'.
func IsVariable(s string) bool {
	return strings.HasPrefix(s, "?")
}

// IsAnonymousVariable detects a variable of the form '?'.
func IsAnonymousVariable(s string) bool {
	return s == "?"
}

// Decode builds a validated Pattern from plain data.
//
// The registry (value.DefaultRegistry if nil) is used to check class
// patterns.
func Decode(x interface{}, reg *value.Registry) (Pattern, error) {
	if reg == nil {
		reg = value.DefaultRegistry
	}
	p, err := decode(x)
	if err != nil {
		return nil, err
	}
	if err = Validate(p, reg); err != nil {
		return nil, err
	}
	return p, nil
}

func decode(x interface{}) (Pattern, error) {
	switch vv := x.(type) {
	case string:
		switch {
		case vv == "_" || IsAnonymousVariable(vv):
			return &Wildcard{}, nil
		case strings.HasPrefix(vv, restPrefix):
			return nil, errors.New(`rest marker "` + vv + `" outside of a sequence pattern`)
		case IsVariable(vv):
			return &Capture{vv[1:]}, nil
		default:
			return &Literal{value.Str(vv)}, nil
		}

	case []interface{}:
		p := &Sequence{
			Elems: make([]Pattern, 0, len(vv)),
		}
		for _, y := range vv {
			if s, is := y.(string); is && strings.HasPrefix(s, restPrefix) {
				if p.Rest != nil {
					return nil, errors.New("multiple rest markers in a sequence pattern")
				}
				name := s[len(restPrefix):]
				if name == "_" {
					name = ""
				}
				p.Rest = &SeqRest{
					At:   len(p.Elems),
					Name: name,
				}
				continue
			}
			e, err := decode(y)
			if err != nil {
				return nil, err
			}
			p.Elems = append(p.Elems, e)
		}
		return p, nil

	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			s, is := k.(string)
			if !is {
				return nil, fmt.Errorf("pattern key %#v (%T) isn't a string", k, k)
			}
			m[s] = v
		}
		return decodeMap(m)

	case map[string]interface{}:
		return decodeMap(vv)

	default:
		v, err := value.FromInterface(x)
		if err != nil {
			return nil, err
		}
		return &Literal{v}, nil
	}
}

func variableName(x interface{}, what string) (string, error) {
	s, is := x.(string)
	if !is || !IsVariable(s) || IsAnonymousVariable(s) {
		return "", fmt.Errorf(`%s must be a variable like "?x" (not %#v)`, what, x)
	}
	return s[1:], nil
}

func decodeList(x interface{}, what string) ([]Pattern, error) {
	xs, is := x.([]interface{})
	if !is {
		return nil, fmt.Errorf("%s must be an array (not %T)", what, x)
	}
	acc := make([]Pattern, len(xs))
	for i, y := range xs {
		p, err := decode(y)
		if err != nil {
			return nil, err
		}
		acc[i] = p
	}
	return acc, nil
}

func decodeMap(m map[string]interface{}) (Pattern, error) {
	if x, have := m[LitKey]; have {
		if len(m) != 1 {
			return nil, errors.New(`"@lit" can't be combined with other keys`)
		}
		v, err := value.FromInterface(x)
		if err != nil {
			return nil, err
		}
		return &Literal{v}, nil
	}

	if x, have := m[OrKey]; have {
		if len(m) != 1 {
			return nil, errors.New(`"@or" can't be combined with other keys`)
		}
		alts, err := decodeList(x, `"@or"`)
		if err != nil {
			return nil, err
		}
		return &Or{alts}, nil
	}

	if x, have := m[AsKey]; have {
		if len(m) != 2 {
			return nil, errors.New(`"@as" needs exactly one "@pattern"`)
		}
		name, err := variableName(x, `"@as"`)
		if err != nil {
			return nil, err
		}
		y, have := m[InnerKey]
		if !have {
			return nil, errors.New(`"@as" needs a "@pattern"`)
		}
		inner, err := decode(y)
		if err != nil {
			return nil, err
		}
		return &As{
			Inner: inner,
			Name:  name,
		}, nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if x, have := m[ClassKey]; have {
		tag, is := x.(string)
		if !is || tag == "" {
			return nil, errors.New(`"@class" must be a non-empty string`)
		}
		p := &Class{
			Tag: tag,
		}
		if y, have := m[ArgsKey]; have {
			args, err := decodeList(y, `"@args"`)
			if err != nil {
				return nil, err
			}
			p.Positional = args
		}
		for _, k := range keys {
			if k == ClassKey || k == ArgsKey {
				continue
			}
			if strings.HasPrefix(k, "@") {
				return nil, errors.New(`unknown directive "` + k + `" in class pattern`)
			}
			sp, err := decode(m[k])
			if err != nil {
				return nil, err
			}
			p.Keywords = append(p.Keywords, FieldPattern{k, sp})
		}
		return p, nil
	}

	p := &Mapping{
		Keys: make([]KeyPattern, 0, len(keys)),
	}
	for _, k := range keys {
		if k == RestKey {
			name, err := variableName(m[k], `"@rest"`)
			if err != nil {
				return nil, err
			}
			p.Rest = name
			continue
		}
		if strings.HasPrefix(k, "@") {
			return nil, errors.New(`unknown directive "` + k + `" in mapping pattern`)
		}
		sp, err := decode(m[k])
		if err != nil {
			return nil, err
		}
		p.Keys = append(p.Keys, KeyPattern{k, sp})
	}
	return p, nil
}

// Encode renders a Pattern as plain data that Decode accepts.
func Encode(p Pattern) interface{} {
	switch vv := p.(type) {
	case *Literal:
		switch lv := vv.Value.(type) {
		case value.Str:
			if IsVariable(string(lv)) || lv == "_" {
				return map[string]interface{}{LitKey: string(lv)}
			}
			return string(lv)
		case value.Int, value.Bool, value.Unit:
			return value.ToInterface(lv)
		default:
			return map[string]interface{}{LitKey: value.ToInterface(lv)}
		}

	case *Wildcard:
		return "?"

	case *Capture:
		return "?" + vv.Name

	case *Or:
		return map[string]interface{}{OrKey: encodeList(vv.Alts)}

	case *Sequence:
		acc := encodeList(vv.Elems)
		if vv.Rest != nil {
			marker := restPrefix + vv.Rest.Name
			at := vv.Rest.At
			acc = append(acc[:at], append([]interface{}{marker}, acc[at:]...)...)
		}
		return acc

	case *Mapping:
		acc := make(map[string]interface{}, len(vv.Keys)+1)
		for _, k := range vv.Keys {
			acc[k.Key] = Encode(k.Pattern)
		}
		if vv.Rest != "" {
			acc[RestKey] = "?" + vv.Rest
		}
		return acc

	case *Class:
		acc := make(map[string]interface{}, len(vv.Keywords)+2)
		acc[ClassKey] = vv.Tag
		if 0 < len(vv.Positional) {
			acc[ArgsKey] = encodeList(vv.Positional)
		}
		for _, k := range vv.Keywords {
			acc[k.Field] = Encode(k.Pattern)
		}
		return acc

	case *As:
		return map[string]interface{}{
			AsKey:    "?" + vv.Name,
			InnerKey: Encode(vv.Inner),
		}
	}
	return nil
}

func encodeList(ps []Pattern) []interface{} {
	acc := make([]interface{}, len(ps))
	for i, p := range ps {
		acc[i] = Encode(p)
	}
	return acc
}

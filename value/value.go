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

// Package value provides the runtime values that patterns are
// matched against.
//
// A Value is one of Unit, Int, Str, Bool, Seq, Map, or *Object.  The
// set is closed: no other package can add a Value type.
//
// Objects carry a class tag and an explicit field map.  Which fields
// can be destructured positionally is not a property of an Object
// but of its class, which is recorded in a Registry.
package value

import (
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	UnitKind Kind = iota
	IntKind
	StrKind
	BoolKind
	SeqKind
	MapKind
	ObjectKind
)

var kindNames = []string{"unit", "int", "str", "bool", "seq", "map", "object"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Value is a subject for pattern matching.
type Value interface {
	Kind() Kind
	String() string

	// value seals the interface.
	value()
}

// Unit is the absent value (None, null).
type Unit struct{}

// Int is an integer.
type Int int64

// Str is a string.
type Str string

// Bool is a boolean.
type Bool bool

// Seq is an ordered sequence of values.
type Seq []Value

// Map maps strings to values.  Order is not significant.
type Map map[string]Value

// Object is an instance of a class.
//
// Fields holds every attribute of the object by name.  The class's
// positional spec (see Registry) says which of these fields a class
// pattern can address by position.
type Object struct {
	Class  string
	Fields map[string]Value
}

// NewObject makes an Object from alternating field names and values.
//
// Panics if the pairs are odd or a name isn't a string.  Meant for
// setup code and tests.
func NewObject(class string, pairs ...interface{}) *Object {
	if len(pairs)%2 != 0 {
		panic("odd args to value.NewObject")
	}
	o := &Object{
		Class:  class,
		Fields: make(map[string]Value, len(pairs)/2),
	}
	for i := 0; i < len(pairs); i += 2 {
		p, is := pairs[i].(string)
		if !is {
			panic("value.NewObject given a non-string field name")
		}
		v, is := pairs[i+1].(Value)
		if !is {
			panic("value.NewObject given a non-Value for " + p)
		}
		o.Fields[p] = v
	}
	return o
}

// Field returns the named field.
func (o *Object) Field(name string) (Value, bool) {
	v, have := o.Fields[name]
	return v, have
}

func (Unit) Kind() Kind    { return UnitKind }
func (Int) Kind() Kind     { return IntKind }
func (Str) Kind() Kind     { return StrKind }
func (Bool) Kind() Kind    { return BoolKind }
func (Seq) Kind() Kind     { return SeqKind }
func (Map) Kind() Kind     { return MapKind }
func (*Object) Kind() Kind { return ObjectKind }

func (Unit) value()    {}
func (Int) value()     {}
func (Str) value()     {}
func (Bool) value()    {}
func (Seq) value()     {}
func (Map) value()     {}
func (*Object) value() {}

func (Unit) String() string {
	return "None"
}

func (x Int) String() string {
	return strconv.FormatInt(int64(x), 10)
}

func (x Str) String() string {
	return strconv.Quote(string(x))
}

func (x Bool) String() string {
	if x {
		return "True"
	}
	return "False"
}

func (xs Seq) String() string {
	acc := make([]string, len(xs))
	for i, x := range xs {
		acc[i] = str(x)
	}
	return "[" + strings.Join(acc, ", ") + "]"
}

func (m Map) String() string {
	keys := SortedKeys(m)
	acc := make([]string, len(keys))
	for i, k := range keys {
		acc[i] = strconv.Quote(k) + ": " + str(m[k])
	}
	return "{" + strings.Join(acc, ", ") + "}"
}

func (o *Object) String() string {
	if o == nil {
		return "nil"
	}
	keys := make([]string, 0, len(o.Fields))
	for k := range o.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	acc := make([]string, len(keys))
	for i, k := range keys {
		acc[i] = k + "=" + str(o.Fields[k])
	}
	return o.Class + "(" + strings.Join(acc, ", ") + ")"
}

func str(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}

// SortedKeys returns the keys of the Map in order.
func SortedKeys(m Map) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports structural equality.
//
// Values of different kinds are never equal, so Bool(true) does not
// equal Int(1).  A nil Value equals only another nil Value.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Unit:
		return true
	case Int:
		return x == b.(Int)
	case Str:
		return x == b.(Str)
	case Bool:
		return x == b.(Bool)
	case Seq:
		y := b.(Seq)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Map:
		return fieldsEqual(x, b.(Map))
	case *Object:
		y := b.(*Object)
		if x == nil || y == nil {
			return x == y
		}
		return x.Class == y.Class && fieldsEqual(x.Fields, y.Fields)
	}
	return false
}

func fieldsEqual(x, y map[string]Value) bool {
	if len(x) != len(y) {
		return false
	}
	for k, xv := range x {
		yv, have := y[k]
		if !have || !Equal(xv, yv) {
			return false
		}
	}
	return true
}

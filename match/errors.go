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

// Construction errors.  A pattern that produces one of these should
// never be matched.  Validate (and the constructors) report them
// before any matching happens.

import (
	"errors"
	"strconv"
	"strings"
)

// ErrEmptyOr occurs when an Or has no alternatives.
var ErrEmptyOr = errors.New("or-pattern needs at least one alternative")

// ErrNilPattern occurs when a pattern tree contains a nil pattern.
var ErrNilPattern = errors.New("nil pattern")

// DuplicateCapture occurs when a name is bound more than once in a
// single pattern tree.
type DuplicateCapture struct {
	Name string
}

func (e *DuplicateCapture) Error() string {
	return `multiple assignments to name "` + e.Name + `" in pattern`
}

// InconsistentOr occurs when the alternatives of an Or do not all
// bind the same set of names.
type InconsistentOr struct {
	Want []string
	Got  []string
	// Alt is the index of the offending alternative.
	Alt int
}

func (e *InconsistentOr) Error() string {
	return "alternative " + strconv.Itoa(e.Alt) + " binds {" + strings.Join(e.Got, ", ") +
		"} but alternative 0 binds {" + strings.Join(e.Want, ", ") + "}"
}

// BadCaptureName occurs when a capture name is empty, "_", or starts
// with "*" (which would read as a rest marker).
type BadCaptureName struct {
	Name string
}

func (e *BadCaptureName) Error() string {
	return `bad capture name "` + e.Name + `"`
}

// ReservedKey occurs when a mapping key or class field starts with
// "@", which is reserved for pattern directives.
type ReservedKey struct {
	Key string
}

func (e *ReservedKey) Error() string {
	return `key or field "` + e.Key + `" starts with the reserved "@"`
}

// UnknownClassPattern occurs when a class pattern names a class tag
// that isn't registered.
type UnknownClassPattern struct {
	Tag string
}

func (e *UnknownClassPattern) Error() string {
	return `class pattern refers to unregistered class "` + e.Tag + `"`
}

// PositionalArity occurs when a class pattern has more positional
// sub-patterns than its class registers.
type PositionalArity struct {
	Tag  string
	Have int
	Max  int
}

func (e *PositionalArity) Error() string {
	return e.Tag + "() accepts " + strconv.Itoa(e.Max) + " positional sub-patterns (" +
		strconv.Itoa(e.Have) + " given)"
}

// DuplicateKey occurs when a mapping pattern repeats a key or a class
// pattern addresses a field more than once.
type DuplicateKey struct {
	Key string
}

func (e *DuplicateKey) Error() string {
	return `key or field "` + e.Key + `" appears more than once in pattern`
}

// BadRest occurs when a sequence pattern's rest marker is out of range.
type BadRest struct {
	At  int
	Len int
}

func (e *BadRest) Error() string {
	return "rest marker at " + strconv.Itoa(e.At) + " in a sequence pattern of " +
		strconv.Itoa(e.Len) + " elements"
}

// BindingCollision occurs when merging bindings finds a name that is
// already bound.
//
// Validated patterns never cause this error, so it indicates that the
// pattern was built without validation.  It's distinct from "no
// match".
type BindingCollision struct {
	Name string
}

func (e *BindingCollision) Error() string {
	return `internal error: binding collision for "` + e.Name + `"`
}

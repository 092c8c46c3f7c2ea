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

package value

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrFrozen occurs when a class is registered after the Registry has
// been frozen.
var ErrFrozen = errors.New("class registry is frozen")

// UnknownClass occurs when a class refers to a supertype that hasn't
// been registered.
type UnknownClass struct {
	Tag string
}

func (e *UnknownClass) Error() string {
	return `class "` + e.Tag + `" is not registered`
}

// ConflictingClass occurs when a class is registered again with a
// different definition.
type ConflictingClass struct {
	Have *Class
	Want *Class
}

func (e *ConflictingClass) Error() string {
	return `class "` + e.Have.Tag + `" already registered as ` + e.Have.String() +
		`; can't re-register as ` + e.Want.String()
}

// Class is the registration data for one class tag.
type Class struct {
	Tag string `json:"tag" yaml:"tag"`

	// Positional is the ordered list of field names that class
	// patterns can address by position.
	Positional []string `json:"positional,omitempty" yaml:",omitempty"`

	// Supers are the direct supertypes.
	Supers []string `json:"supers,omitempty" yaml:",omitempty"`
}

func (c *Class) String() string {
	s := c.Tag + "(" + strings.Join(c.Positional, ", ") + ")"
	if 0 < len(c.Supers) {
		s += " < " + strings.Join(c.Supers, ", ")
	}
	return s
}

func (c *Class) same(d *Class) bool {
	return c.Tag == d.Tag && sameStrings(c.Positional, d.Positional) && sameStrings(c.Supers, d.Supers)
}

func sameStrings(xs, ys []string) bool {
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

// Registry is the table of known classes.
//
// A Registry should be populated during setup and then treated as
// read-only.  Freeze enforces that discipline.  All methods are safe
// to call concurrently.
type Registry struct {
	sync.RWMutex
	classes map[string]*Class
	frozen  bool
}

// DefaultRegistry is the process-wide class table.
var DefaultRegistry = NewRegistry()

// NewRegistry makes an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		classes: make(map[string]*Class, 16),
	}
}

// RegisterClass registers a class in the DefaultRegistry.
func RegisterClass(tag string, positional []string, supers ...string) error {
	return DefaultRegistry.Register(tag, positional, supers...)
}

// Register adds a class.
//
// Every supertype must already be registered.  If positional is nil
// and the class has a supertype, the class inherits the positional
// spec of its first supertype.
//
// Registering the same definition again is a no-op.  Registering a
// different definition for a known tag returns a ConflictingClass.
func (r *Registry) Register(tag string, positional []string, supers ...string) error {
	if tag == "" {
		return errors.New("empty class tag")
	}

	r.Lock()
	defer r.Unlock()

	for _, s := range supers {
		if _, have := r.classes[s]; !have {
			return &UnknownClass{s}
		}
	}

	if positional == nil && 0 < len(supers) {
		positional = r.classes[supers[0]].Positional
	}

	seen := make(map[string]bool, len(positional))
	for _, p := range positional {
		if seen[p] {
			return errors.New(`class "` + tag + `" repeats positional field "` + p + `"`)
		}
		seen[p] = true
	}

	c := &Class{
		Tag:        tag,
		Positional: append([]string(nil), positional...),
		Supers:     append([]string(nil), supers...),
	}

	if have, already := r.classes[tag]; already {
		if have.same(c) {
			return nil
		}
		return &ConflictingClass{have, c}
	}

	if r.frozen {
		return ErrFrozen
	}

	r.classes[tag] = c

	return nil
}

// Copy makes an unfrozen Registry with the same classes.
func (r *Registry) Copy() *Registry {
	r.RLock()
	defer r.RUnlock()
	acc := &Registry{
		classes: make(map[string]*Class, len(r.classes)+8),
	}
	for tag, c := range r.classes {
		acc.classes[tag] = c
	}
	return acc
}

// Freeze prevents further registrations.
func (r *Registry) Freeze() {
	r.Lock()
	r.frozen = true
	r.Unlock()
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.RLock()
	defer r.RUnlock()
	return r.frozen
}

// Lookup finds the class with the given tag.
func (r *Registry) Lookup(tag string) (*Class, bool) {
	r.RLock()
	c, have := r.classes[tag]
	r.RUnlock()
	return c, have
}

// IsSubclass reports whether tag is ancestor or (transitively) a
// registered subtype of ancestor.
func (r *Registry) IsSubclass(tag, ancestor string) bool {
	if tag == ancestor {
		return true
	}
	r.RLock()
	defer r.RUnlock()
	return r.isSubclass(tag, ancestor)
}

func (r *Registry) isSubclass(tag, ancestor string) bool {
	if tag == ancestor {
		return true
	}
	c, have := r.classes[tag]
	if !have {
		return false
	}
	for _, s := range c.Supers {
		if r.isSubclass(s, ancestor) {
			return true
		}
	}
	return false
}

// Tags returns all registered tags in order.
func (r *Registry) Tags() []string {
	r.RLock()
	defer r.RUnlock()
	acc := make([]string, 0, len(r.classes))
	for tag := range r.classes {
		acc = append(acc, tag)
	}
	sort.Strings(acc)
	return acc
}

// Leaves returns the registered classes deriving from root (including
// root itself) that have no registered subclasses.
//
// For a closed hierarchy these are the concrete shapes a subject of
// type root can take.
func (r *Registry) Leaves(root string) []string {
	r.RLock()
	defer r.RUnlock()

	parents := make(map[string]bool, len(r.classes))
	for _, c := range r.classes {
		for _, s := range c.Supers {
			parents[s] = true
		}
	}

	acc := make([]string, 0, 8)
	for tag := range r.classes {
		if parents[tag] {
			continue
		}
		if r.isSubclass(tag, root) {
			acc = append(acc, tag)
		}
	}
	sort.Strings(acc)
	return acc
}

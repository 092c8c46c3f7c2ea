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

// Package tools has utilities for examining and rendering statements.
package tools

import (
	"sort"

	"github.com/Comcast/casematch/core"
	"github.com/Comcast/casematch/match"
)

// StatementAnalysis is a summary of a statement's structure along
// with some complaints.
type StatementAnalysis struct {
	statement *core.Statement

	Errors   []string `json:"errors,omitempty" yaml:",omitempty"`
	Arms     int      `json:"arms" yaml:"arms"`
	Guards   int      `json:"guards" yaml:"guards"`
	Bodies   int      `json:"bodies" yaml:"bodies"`
	Captures int      `json:"captures" yaml:"captures"`

	// NoBody are labels of arms that have no body.  Selecting such
	// an arm gives a nil result.
	NoBody []string `json:"noBody,omitempty" yaml:"noBody,omitempty"`

	// Irrefutable are labels of unguarded arms that match
	// everything.
	Irrefutable []string `json:"irrefutable,omitempty" yaml:",omitempty"`

	// Unreachable are labels of arms after the first irrefutable
	// one.
	Unreachable []string `json:"unreachable,omitempty" yaml:",omitempty"`

	Classes      []string `json:"classes,omitempty" yaml:",omitempty"`
	Interpreters []string `json:"interpreters,omitempty" yaml:",omitempty"`
}

// Analyze examines the statement's arms.
//
// Patterns are checked with match.Validate against the statement's
// registry (if it's been compiled).  Problems go into Errors.
func Analyze(s *core.Statement) (*StatementAnalysis, error) {
	a := StatementAnalysis{
		statement: s,
		Arms:      len(s.Arms),
		Errors:    make([]string, 0, 8),
	}

	classes, interpreters := make(map[string]bool), make(map[string]bool)
	sawIrrefutable := false

	for _, arm := range s.Arms {
		label := arm.Label()

		if sawIrrefutable {
			a.Unreachable = append(a.Unreachable, label)
		}

		if arm.Pattern == nil {
			a.Errors = append(a.Errors, label+": no pattern")
			continue
		}
		if err := match.Validate(arm.Pattern, s.Classes()); err != nil {
			a.Errors = append(a.Errors, label+": "+err.Error())
		}

		a.Captures += len(arm.Pattern.Captures())

		match.Walk(arm.Pattern, func(p match.Pattern) {
			if c, is := p.(*match.Class); is {
				classes[c.Tag] = true
			}
		})

		if arm.Guarded() {
			a.Guards++
			if arm.GuardSource != nil {
				interpreters[arm.GuardSource.Interpreter] = true
			}
		} else if match.Irrefutable(arm.Pattern) {
			a.Irrefutable = append(a.Irrefutable, label)
			sawIrrefutable = true
		}

		if arm.Body != nil || arm.BodySource != nil {
			a.Bodies++
			if arm.BodySource != nil {
				interpreters[arm.BodySource.Interpreter] = true
			}
		} else {
			a.NoBody = append(a.NoBody, label)
		}
	}

	a.Classes = keysToStringSlice(classes)
	a.Interpreters = keysToStringSlice(interpreters)

	return &a, nil
}

// keysToStringSlice returns the sorted keys.
func keysToStringSlice(m map[string]bool) []string {
	var list []string
	for key := range m {
		list = append(list, key)
	}
	sort.Strings(list)
	return list
}

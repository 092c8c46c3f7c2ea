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

// Package core provides match statements: ordered lists of arms
// that are tried against a subject value.
//
// An Arm has a Pattern (see package match), an optional Guard, and a
// Body.  Statement.Select walks the arms in order.  The first arm
// whose pattern matches and whose guard (if any) accepts the
// resulting Bindings wins.  If a guard rejects, that arm is lost and
// the walk continues with the next arm.  Nothing else is retried.
//
// Statement.Evaluate runs the winning arm's Body with the winning
// Bindings.  No match is not an error: Evaluate reports it as
// matched == false.
//
// Guards and bodies can be Go functions (GuardFunc and BodyFunc) or
// Sources for an Interpreter.  A Statement should be Compiled before
// use.  Compilation validates every pattern against a class registry
// and compiles guard and body sources.  After that, matching can't
// fail structurally.
//
// StatementSource is the data form of a Statement (JSON or YAML),
// which also declares the classes that the patterns use.
package core

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

package core

import (
	"sync/atomic"
	"unsafe"
)

// Statementer enables other things to manifest themselves as
// Statements.
//
// A Statement is itself a Statementer.  An UpdatableStatement is also
// a Statementer.
type Statementer interface {
	Statement() *Statement
}

// Statement makes any Statement a Statementer.
func (s *Statement) Statement() *Statement {
	return s
}

// UpdatableStatement is a Statementer with an underlying Statement
// that can be changed safely while other goroutines are evaluating
// the old one.
type UpdatableStatement struct {
	statement unsafe.Pointer // *Statement
}

func NewUpdatableStatement(s *Statement) *UpdatableStatement {
	return &UpdatableStatement{
		statement: unsafe.Pointer(s),
	}
}

// SetStatement atomically replaces the underlying Statement.
func (s *UpdatableStatement) SetStatement(statement *Statement) {
	atomic.StorePointer(&s.statement, unsafe.Pointer(statement))
}

func (s *UpdatableStatement) Statement() *Statement {
	return (*Statement)(atomic.LoadPointer(&s.statement))
}

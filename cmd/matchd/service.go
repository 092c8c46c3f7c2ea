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

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Comcast/casematch/core"
	"github.com/Comcast/casematch/storage"
	"github.com/Comcast/casematch/tools"
	"github.com/Comcast/casematch/value"
)

// Service evaluates subjects against the statements in one storage
// library.
type Service struct {
	Storage      storage.Storage
	Library      string
	Interpreters map[string]core.Interpreter

	// Timeout is the maximum duration of one request.
	Timeout time.Duration

	Verbose bool

	sync.RWMutex

	// reg is shared by all of the library's statements, so their
	// class declarations have to agree.
	reg        *value.Registry
	statements map[string]*core.UpdatableStatement
}

func NewService(st storage.Storage, lib string, interpreters map[string]core.Interpreter) *Service {
	return &Service{
		Storage:      st,
		Library:      lib,
		Interpreters: interpreters,
		Timeout:      10 * time.Second,
		reg:          value.NewRegistry(),
		statements:   make(map[string]*core.UpdatableStatement),
	}
}

func (s *Service) logf(format string, args ...interface{}) {
	if s.Verbose {
		log.Printf("Service."+format, args...)
	}
}

// Load compiles every statement in the library.
func (s *Service) Load(ctx context.Context) error {
	s.logf("Load %s", s.Library)
	statements, err := storage.Load(ctx, s.Storage, s.Library, s.reg, s.Interpreters)
	if err != nil {
		return err
	}
	s.Lock()
	for name, st := range statements {
		s.statements[name] = core.NewUpdatableStatement(st)
	}
	s.Unlock()
	return nil
}

// Put compiles the source, stores it, and then makes it available.
//
// Goroutines already evaluating an old version of the statement
// aren't disturbed.
func (s *Service) Put(ctx context.Context, src *core.StatementSource) error {
	s.logf("Put %s", src.Name)
	if src.Name == "" {
		return errors.New("statement has no name")
	}
	st, err := src.Statement(ctx, s.reg, s.Interpreters)
	if err != nil {
		return err
	}
	if err = s.Storage.PutStatement(ctx, s.Library, src); err != nil {
		return err
	}
	s.Lock()
	if u, have := s.statements[src.Name]; have {
		u.SetStatement(st)
	} else {
		s.statements[src.Name] = core.NewUpdatableStatement(st)
	}
	s.Unlock()
	return nil
}

func (s *Service) Rem(ctx context.Context, name string) error {
	s.logf("Rem %s", name)
	if err := s.Storage.RemStatement(ctx, s.Library, name); err != nil {
		return err
	}
	s.Lock()
	delete(s.statements, name)
	s.Unlock()
	return nil
}

// Statement returns the current version of the named statement.
func (s *Service) Statement(name string) (*core.Statement, error) {
	s.RLock()
	u, have := s.statements[name]
	s.RUnlock()
	if !have {
		return nil, fmt.Errorf("unknown statement '%s'", name)
	}
	return u.Statement(), nil
}

// Names returns the sorted names of the loaded statements.
func (s *Service) Names() []string {
	s.RLock()
	acc := make([]string, 0, len(s.statements))
	for name := range s.statements {
		acc = append(acc, name)
	}
	s.RUnlock()
	sort.Strings(acc)
	return acc
}

// Process handles a Request.  Problems are reported in the
// Response's Error.
func (s *Service) Process(ctx context.Context, req *Request) *Response {
	if 0 < s.Timeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	r := &Response{
		Id: req.Id,
	}
	if err := s.process(ctx, req, r); err != nil {
		s.logf("Process %s %s error %s", req.Op, req.Statement, err)
		r.Error = err.Error()
	}
	return r
}

func (s *Service) process(ctx context.Context, req *Request, r *Response) error {
	switch req.Op {
	case "", "evaluate":
		st, err := s.Statement(req.Statement)
		if err != nil {
			return err
		}
		subject, err := value.FromInterface(req.Subject)
		if err != nil {
			return err
		}
		sel, _, err := st.Select(ctx, subject)
		if err != nil {
			return err
		}
		if sel == nil {
			return nil
		}
		r.Matched = true
		r.Arm = sel.Label
		r.Bindings = sel.Bindings
		result, err := st.Exec(ctx, sel)
		if err != nil {
			return err
		}
		if v, is := result.(value.Value); is {
			result = value.ToInterface(v)
		}
		r.Result = result

	case "put":
		if req.Source == nil {
			return errors.New("no source")
		}
		return s.Put(ctx, req.Source)

	case "get":
		src, err := s.Storage.GetStatement(ctx, s.Library, req.Statement)
		if err != nil {
			return err
		}
		r.Source = src

	case "rem":
		return s.Rem(ctx, req.Statement)

	case "list":
		r.Statements = s.Names()

	case "coverage":
		st, err := s.Statement(req.Statement)
		if err != nil {
			return err
		}
		d, err := tools.ParseDomain(req.Domain, st.Classes())
		if err != nil {
			return err
		}
		r.Coverage = tools.CheckExhaustive(st.Arms, d, st.Classes())

	default:
		return fmt.Errorf("unknown op '%s'", req.Op)
	}
	return nil
}

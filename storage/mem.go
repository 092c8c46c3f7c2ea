package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/Comcast/casematch/core"
)

// MemStorage is a Storage that doesn't persist anything.
//
// Sources are stored as JSON so that callers can't modify what's
// stored.
type MemStorage struct {
	sync.RWMutex
	libs map[string]map[string][]byte
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		libs: make(map[string]map[string][]byte),
	}
}

func (s *MemStorage) Open(ctx context.Context) error {
	return nil
}

func (s *MemStorage) Close(ctx context.Context) error {
	return nil
}

func (s *MemStorage) MakeLibrary(ctx context.Context, lib string) error {
	s.Lock()
	defer s.Unlock()
	if _, have := s.libs[lib]; have {
		return errors.New("library " + lib + " exists")
	}
	s.libs[lib] = make(map[string][]byte)
	return nil
}

func (s *MemStorage) RemLibrary(ctx context.Context, lib string) error {
	s.Lock()
	defer s.Unlock()
	if _, have := s.libs[lib]; !have {
		return NotFound
	}
	delete(s.libs, lib)
	return nil
}

func (s *MemStorage) PutStatement(ctx context.Context, lib string, src *core.StatementSource) error {
	if src.Name == "" {
		return errors.New("statement has no name")
	}
	js, err := json.Marshal(src)
	if err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()
	m, have := s.libs[lib]
	if !have {
		m = make(map[string][]byte)
		s.libs[lib] = m
	}
	m[src.Name] = js
	return nil
}

func (s *MemStorage) GetStatement(ctx context.Context, lib, name string) (*core.StatementSource, error) {
	s.RLock()
	js, have := s.libs[lib][name]
	s.RUnlock()
	if !have {
		return nil, NotFound
	}
	return core.ParseStatementSource(js)
}

func (s *MemStorage) RemStatement(ctx context.Context, lib, name string) error {
	s.Lock()
	defer s.Unlock()
	delete(s.libs[lib], name)
	return nil
}

func (s *MemStorage) ListStatements(ctx context.Context, lib string) ([]string, error) {
	s.RLock()
	defer s.RUnlock()
	acc := make([]string, 0, len(s.libs[lib]))
	for name := range s.libs[lib] {
		acc = append(acc, name)
	}
	sort.Strings(acc)
	return acc, nil
}

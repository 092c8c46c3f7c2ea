// Package bolt is a BoltDB implementation of storage.Storage.
//
// Each library is a bucket.  Each statement source is stored as JSON
// under its name.
package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/Comcast/casematch/core"
	"github.com/Comcast/casematch/storage"

	bolt "go.etcd.io/bbolt"
)

type Storage struct {
	Debug    bool
	filename string
	db       *bolt.DB
}

func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
	}, nil
}

func (s *Storage) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("BoltDB Storage."+format, args...)
	}
}

func (s *Storage) MakeLibrary(ctx context.Context, lib string) error {
	s.logf("MakeLibrary %s", lib)
	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucket([]byte(lib))
		return err
	})
}

func (s *Storage) RemLibrary(ctx context.Context, lib string) error {
	s.logf("RemLibrary %s", lib)
	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket([]byte(lib))
		if err == bolt.ErrBucketNotFound {
			return storage.NotFound
		}
		return err
	})
}

func (s *Storage) PutStatement(ctx context.Context, lib string, src *core.StatementSource) error {
	s.logf("PutStatement %s %s", lib, src.Name)
	if src.Name == "" {
		return errors.New("statement has no name")
	}
	js, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(lib))
		if err != nil {
			return err
		}
		return b.Put([]byte(src.Name), js)
	})
}

func (s *Storage) GetStatement(ctx context.Context, lib, name string) (*core.StatementSource, error) {
	s.logf("GetStatement %s %s", lib, name)
	var js []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(lib))
		if b == nil {
			return storage.NotFound
		}
		bs := b.Get([]byte(name))
		if bs == nil {
			return storage.NotFound
		}
		// Only valid during the transaction.
		js = append([]byte(nil), bs...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return core.ParseStatementSource(js)
}

func (s *Storage) RemStatement(ctx context.Context, lib, name string) error {
	s.logf("RemStatement %s %s", lib, name)
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(lib))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(name))
	})
}

func (s *Storage) ListStatements(ctx context.Context, lib string) ([]string, error) {
	s.logf("ListStatements %s", lib)
	names := make([]string, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(lib))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		// Bolt keeps keys in byte-sorted order.
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			names = append(names, string(k))
		}
		return nil
	})
	return names, err
}

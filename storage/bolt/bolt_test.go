package bolt

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Comcast/casematch/core"
	"github.com/Comcast/casematch/storage"
	"github.com/Comcast/casematch/value"
)

func TestImpl(t *testing.T) {
	// Just confirm that this code compiles.
	var _ storage.Storage = &Storage{}
}

func openStorage(t testing.TB) (*Storage, context.Context) {
	filename := filepath.Join(t.TempDir(), "storage.db")

	s, err := NewStorage(filename)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := s.Open(ctx); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := s.Close(ctx); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			return
		}
		if err := os.Remove(filename); err != nil {
			t.Fatal(err)
		}
	})

	return s, ctx
}

func likesSource(name, likes string) *core.StatementSource {
	return &core.StatementSource{
		Name: name,
		Classes: []core.ClassSource{
			{Tag: "Person", Positional: []string{"name"}},
		},
		Arms: []core.ArmSource{
			{
				Name: "likes",
				Pattern: map[string]interface{}{
					"@class": "Person",
					"likes":  likes,
				},
			},
			{Name: "otherwise", Pattern: "_"},
		},
	}
}

func TestBasics(t *testing.T) {
	var lib = "simpsons"

	s, ctx := openStorage(t)

	if err := s.MakeLibrary(ctx, lib); err != nil {
		t.Fatal(err)
	}

	if err := s.PutStatement(ctx, lib, likesSource("homer", "beer")); err != nil {
		t.Fatal(err)
	}
	if err := s.PutStatement(ctx, lib, likesSource("bart", "mischief")); err != nil {
		t.Fatal(err)
	}

	check := func(who, what string) {
		src, err := s.GetStatement(ctx, lib, who)
		if what == "" {
			if err != storage.NotFound {
				t.Fatalf("%s: %v", who, err)
			}
			return
		}
		if err != nil {
			t.Fatal(err)
		}
		m, is := src.Arms[0].Pattern.(map[string]interface{})
		if !is {
			t.Fatalf("%#v", src.Arms[0].Pattern)
		}
		if likes := m["likes"]; likes != what {
			t.Fatalf(`"%s" != "%s"`, likes, what)
		}
	}

	check("homer", "beer")
	check("bart", "mischief")

	names, err := s.ListStatements(ctx, lib)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "bart" || names[1] != "homer" {
		t.Fatal(names)
	}

	if err := s.PutStatement(ctx, lib, likesSource("homer", "donuts")); err != nil {
		t.Fatal(err)
	}
	check("homer", "donuts")
	check("bart", "mischief")

	if err := s.RemStatement(ctx, lib, "homer"); err != nil {
		t.Fatal(err)
	}
	check("homer", "")
	check("bart", "mischief")

	if err := s.RemLibrary(ctx, lib); err != nil {
		t.Fatal(err)
	}
	check("bart", "")
	if err := s.RemLibrary(ctx, lib); err != storage.NotFound {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	s, ctx := openStorage(t)

	if err := s.PutStatement(ctx, "lib", likesSource("likes", "tacos")); err != nil {
		t.Fatal(err)
	}

	statements, err := storage.Load(ctx, s, "lib", value.NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	st, have := statements["likes"]
	if !have {
		t.Fatal(statements)
	}

	subject := value.MustFromInterface(map[string]interface{}{
		"@class": "Person",
		"name":   "homer",
		"likes":  "tacos",
	})
	sel, _, err := st.Select(ctx, subject)
	if err != nil {
		t.Fatal(err)
	}
	if sel == nil || sel.Label != "likes" {
		t.Fatalf("%#v", sel)
	}
}

// BenchmarkBolt is just for fun.  Bolt is slow.
func BenchmarkBolt(b *testing.B) {
	s, ctx := openStorage(b)

	src := likesSource("homer", "beer")

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		var err error
		if i%2 == 0 {
			err = s.PutStatement(ctx, "simpsons", src)
		} else {
			_, err = s.GetStatement(ctx, "simpsons", "homer")
		}
		if err != nil {
			b.Fatal(err)
		}
	}
}

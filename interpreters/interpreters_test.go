package interpreters

import (
	"context"
	"testing"

	"github.com/Comcast/casematch/core"
	"github.com/Comcast/casematch/value"
)

var statement = `{
  "name": "sign",
  "arms": [
    {"pattern": "?n",
     "guard": {"interpreter": "ecmascript", "code": "return _.bindings.n < 0;"},
     "body": {"interpreter": "ecmascript", "code": "return '<';"}},
    {"pattern": 0,
     "body": {"interpreter": "goja", "code": "return '=';"}},
    {"pattern": "_",
     "body": {"interpreter": "goja", "code": "return '>';"}}
  ]
}`

func TestStandard(t *testing.T) {
	ctx := context.Background()
	src, err := core.ParseStatementSource([]byte(statement))
	if err != nil {
		t.Fatal(err)
	}
	s, err := src.Statement(ctx, value.NewRegistry(), Standard())
	if err != nil {
		t.Fatal(err)
	}
	for n, want := range map[int64]string{-3: "<", 0: "=", 7: ">"} {
		x, err := s.MustMatch(ctx, value.Int(n))
		if err != nil {
			t.Fatal(err)
		}
		if x != want {
			t.Fatalf("%d: %#v", n, x)
		}
	}
}

func TestLinting(t *testing.T) {
	ctx := context.Background()
	src, err := core.ParseStatementSource([]byte(statement))
	if err != nil {
		t.Fatal(err)
	}
	s, err := src.Statement(ctx, value.NewRegistry(), Linting())
	if err != nil {
		t.Fatal(err)
	}
	// The noop guard accepts everything.
	sel, _, err := s.Select(ctx, value.Int(7))
	if err != nil {
		t.Fatal(err)
	}
	if sel.Index != 0 {
		t.Fatal(sel.Index)
	}
}

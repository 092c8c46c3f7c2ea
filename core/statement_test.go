package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Comcast/casematch/match"
	. "github.com/Comcast/casematch/util/testutil"
	"github.com/Comcast/casematch/value"
)

func v(x interface{}) value.Value {
	return value.MustFromInterface(Dwimjs(x))
}

func pat(t *testing.T, reg *value.Registry, x interface{}) match.Pattern {
	p, err := match.Decode(Dwimjs(x), reg)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// say makes a body that formats its bindings.
func say(format string, names ...string) Body {
	return BodyFunc(func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
		args := make([]interface{}, len(names))
		for i, name := range names {
			x, _ := bs.Get(name)
			args[i] = x
		}
		return fmt.Sprintf(format, args...), nil
	})
}

func compile(t *testing.T, s *Statement, reg *value.Registry) *Statement {
	if err := s.Compile(context.Background(), reg, nil, true); err != nil {
		t.Fatal(err)
	}
	return s
}

type evalTest struct {
	subject interface{}
	want    interface{}
}

func checkEvaluations(t *testing.T, s *Statement, tests []evalTest) {
	ctx := context.Background()
	for _, tt := range tests {
		subject := v(tt.subject)
		got, matched, err := s.Evaluate(ctx, subject)
		if err != nil {
			t.Fatalf("%s: %v", subject, err)
		}
		if tt.want == nil {
			if matched {
				t.Fatalf("%s: expected no match but got %v", subject, got)
			}
			continue
		}
		if !matched {
			t.Fatalf("%s: expected a match", subject)
		}
		if w, is := tt.want.(value.Value); is {
			if gv, is := got.(value.Value); !is || !value.Equal(gv, w) {
				t.Fatalf("%s: got %v, want %s", subject, got, w)
			}
			continue
		}
		if got != tt.want {
			t.Fatalf("%s: got %#v, want %#v", subject, got, tt.want)
		}
	}
}

func TestFactorial(t *testing.T) {
	s, err := FactorialStatement(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	checkEvaluations(t, s, []evalTest{
		{`0`, value.Int(1)},
		{`1`, value.Int(1)},
		{`5`, value.Int(120)},
		{`10`, value.Int(3628800)},
		{`-3`, value.Unit{}},
	})
}

func TestFactorialMultipleAlternatives(t *testing.T) {
	// case -2 | -1 | 0 | 1: 1
	// case _: n * factorial(n-1)
	s := compile(t, &Statement{
		Name: "factorial",
		Arms: []*Arm{
			{
				Pattern: pat(t, nil, `{"@or":[-2,-1,0,1]}`),
				Body: BodyFunc(func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
					return value.Int(1), nil
				}),
			},
			{
				Pattern: pat(t, nil, `"?n"`),
				Body: BodyFunc(func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
					n, _ := bs.Get("n")
					x, err := recur(ctx, n.(value.Int)-1)
					if err != nil {
						return nil, err
					}
					return n.(value.Int) * x.(value.Int), nil
				}),
			},
		},
	}, nil)

	checkEvaluations(t, s, []evalTest{
		{`-2`, value.Int(1)},
		{`4`, value.Int(24)},
	})
}

func TestMatchList(t *testing.T) {
	s := compile(t, &Statement{
		Name: "match_list",
		Arms: []*Arm{
			{Pattern: pat(t, nil, `[]`), Body: say("empty")},
			{Pattern: pat(t, nil, `["?x"]`), Body: say("one: %s", "x")},
			{Pattern: pat(t, nil, `["?x","?y"]`), Body: say("two: %s and %s", "x", "y")},
			{Pattern: pat(t, nil, `"_"`), Body: say("more than two")},
		},
	}, nil)

	checkEvaluations(t, s, []evalTest{
		{`[]`, "empty"},
		{`[10]`, "one: 10"},
		{`[3,7]`, "two: 3 and 7"},
		{`[1,2,3,4,5]`, "more than two"},
	})
}

func TestMatchDict(t *testing.T) {
	s := compile(t, &Statement{
		Name: "match_dict",
		Arms: []*Arm{
			{
				Pattern: pat(t, nil, `"?d"`),
				Guard: GuardFunc(func(ctx context.Context, bs *match.Bindings) (bool, error) {
					d, _ := bs.Get("d")
					m, is := d.(value.Map)
					return is && len(m) == 0, nil
				}),
				Body: say("empty"),
			},
			{
				Pattern: pat(t, nil, `{"name":"?nome"}`),
				Body:    say("name is %s", "nome"),
			},
			{
				Pattern: pat(t, nil, `{"date":"?data","article":{"title":"?titulo"}}`),
				Body:    say("%s published %s", "titulo", "data"),
			},
			{
				Pattern: match.Wild(),
				Body:    say("nothing interesting"),
			},
		},
	}, nil)

	checkEvaluations(t, s, []evalTest{
		{`{}`, "empty"},
		{`{"name":"Fabricio","age":29}`, `name is "Fabricio"`},
		{`{"date":"31/05/2021","time":"20:49","article":{"title":"Pattern Matching"}}`,
			`"Pattern Matching" published "31/05/2021"`},
		{`{"what is love":"baby"}`, "nothing interesting"},
	})
}

var exampleTree = `{"@class":"Branch","value":5,
  "left":{"@class":"Branch","value":3,
          "left":{"@class":"Leaf"},
          "right":{"@class":"Branch","value":4,"left":{"@class":"Leaf"},"right":{"@class":"Leaf"}}},
  "right":{"@class":"Leaf"}}`

func TestTreeHeight(t *testing.T) {
	reg := value.NewRegistry()
	s, err := TreeHeightStatement(context.Background(), reg)
	if err != nil {
		t.Fatal(err)
	}
	checkEvaluations(t, s, []evalTest{
		{`{"@class":"Leaf"}`, value.Int(0)},
		{`{"@class":"Branch","value":5,"left":{"@class":"Branch","value":3,"left":{"@class":"Leaf"},"right":{"@class":"Leaf"}},"right":{"@class":"Leaf"}}`, value.Int(2)},
		{exampleTree, value.Int(3)},
		{`{"@class":"Tree"}`, nil},
	})
}

func TestFirstDoubleLeafBranch(t *testing.T) {
	reg := value.NewRegistry()
	if err := RegisterTreeClasses(reg); err != nil {
		t.Fatal(err)
	}

	recurOn := func(name string) Body {
		return BodyFunc(func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
			sub, _ := bs.Get(name)
			return recur(ctx, sub)
		})
	}

	s := compile(t, &Statement{
		Name: "first_double_leaf_branch_value",
		Arms: []*Arm{
			{
				Name:    "a",
				Pattern: pat(t, reg, `{"@class":"Branch","@args":["?v",{"@class":"Leaf"},{"@class":"Leaf"}]}`),
				Body: BodyFunc(func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
					x, _ := bs.Get("v")
					return x, nil
				}),
			},
			{
				Name:    "b",
				Pattern: pat(t, reg, `{"@class":"Branch","@args":["_",{"@as":"?left","@pattern":{"@class":"Branch"}},"_"]}`),
				Body:    recurOn("left"),
			},
			{
				Name:    "c",
				Pattern: pat(t, reg, `{"@class":"Branch","@args":["_","_",{"@as":"?right","@pattern":{"@class":"Branch"}}]}`),
				Body:    recurOn("right"),
			},
			{
				Name:    "d",
				Pattern: pat(t, reg, `{"@class":"Leaf"}`),
				Body: BodyFunc(func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
					return value.Unit{}, nil
				}),
			},
		},
	}, reg)

	checkEvaluations(t, s, []evalTest{
		{exampleTree, value.Int(4)},
		{`{"@class":"Leaf"}`, value.Unit{}},
	})

	sel, _, err := s.Select(context.Background(), v(exampleTree))
	if err != nil {
		t.Fatal(err)
	}
	if sel.Label != "b" || sel.Index != 1 {
		t.Fatalf("%#v", sel)
	}
}

func TestPersonKeywords(t *testing.T) {
	reg := value.NewRegistry()
	if err := reg.Register("Person", nil); err != nil {
		t.Fatal(err)
	}

	var announced []string

	s := compile(t, &Statement{
		Name: "is_age_major",
		Arms: []*Arm{
			{
				Pattern: pat(t, reg, `{"@class":"Person","name":"?n","age":18}`),
				Body: BodyFunc(func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
					n, _ := bs.Get("n")
					announced = append(announced, string(n.(value.Str)))
					return true, nil
				}),
			},
			{
				Pattern: pat(t, reg, `{"@class":"Person","age":"?a"}`),
				Guard: GuardFunc(func(ctx context.Context, bs *match.Bindings) (bool, error) {
					a, _ := bs.Get("a")
					return 18 < a.(value.Int), nil
				}),
				Body: BodyFunc(func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
					return true, nil
				}),
			},
			{
				Pattern: match.Wild(),
				Body: BodyFunc(func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
					return false, nil
				}),
			},
		},
	}, reg)

	checkEvaluations(t, s, []evalTest{
		{`{"@class":"Person","name":"Felipe","age":18}`, true},
		{`{"@class":"Person","name":"Fabrício","age":29}`, true},
		{`{"@class":"Person","name":"Letícia","age":15}`, false},
	})

	if len(announced) != 1 || announced[0] != "Felipe" {
		t.Fatal(announced)
	}
}

func TestNonExhaustive(t *testing.T) {
	arms := func(dunno bool) []*Arm {
		acc := []*Arm{
			{Pattern: match.Lit(value.Int(-1)), Body: say("<")},
			{Pattern: match.Lit(value.Int(0)), Body: say("=")},
			{Pattern: match.Lit(value.Int(1)), Body: say(">")},
		}
		if dunno {
			acc = append(acc, &Arm{Pattern: match.Wild(), Body: say("dunno")})
		}
		return acc
	}

	exhaustive := compile(t, &Statement{Name: "exhaustive", Arms: arms(true)}, nil)
	checkEvaluations(t, exhaustive, []evalTest{
		{`10`, "dunno"},
		{`0`, "="},
	})

	non := compile(t, &Statement{Name: "non_exhaustive", Arms: arms(false)}, nil)
	checkEvaluations(t, non, []evalTest{
		{`-10`, nil},
		{`-1`, "<"},
	})

	ctx := context.Background()
	result, matched, err := non.Evaluate(ctx, value.Int(-10))
	if err != nil || matched || result != nil {
		t.Fatal(result, matched, err)
	}

	_, err = non.MustMatch(ctx, value.Int(-10))
	var nm *NoMatch
	if !errors.As(err, &nm) {
		t.Fatalf("%T %v", err, err)
	}
}

func TestGuardLosesArm(t *testing.T) {
	var guarded int

	// A rejected guard doesn't cause the other alternative to be
	// tried, even though it would have matched.
	s := compile(t, &Statement{
		Arms: []*Arm{
			{
				Name:    "or",
				Pattern: pat(t, nil, `{"@or":[["?x",1],[2,"?x"]]}`),
				Guard: GuardFunc(func(ctx context.Context, bs *match.Bindings) (bool, error) {
					guarded++
					x, _ := bs.Get("x")
					return value.Equal(x, value.Int(1)), nil
				}),
				Body: say("or %s", "x"),
			},
			{
				Name:    "fallback",
				Pattern: match.Wild(),
				Body:    say("fallback"),
			},
		},
	}, nil)

	checkEvaluations(t, s, []evalTest{
		{`[2,1]`, "fallback"},
	})
	if guarded != 1 {
		t.Fatalf("guard called %d times", guarded)
	}
}

func TestGuardError(t *testing.T) {
	var later int
	oops := errors.New("oops")

	s := compile(t, &Statement{
		Arms: []*Arm{
			{
				Pattern: match.Wild(),
				Guard: GuardFunc(func(ctx context.Context, bs *match.Bindings) (bool, error) {
					return false, oops
				}),
			},
			{
				Pattern: match.Wild(),
				Body: BodyFunc(func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
					later++
					return nil, nil
				}),
			},
		},
	}, nil)

	_, matched, err := s.Evaluate(context.Background(), value.Int(1))
	if err != oops {
		t.Fatal(err)
	}
	if matched || later != 0 {
		t.Fatal(matched, later)
	}
}

func TestGuardCannotChangeBindings(t *testing.T) {
	s := compile(t, &Statement{
		Arms: []*Arm{
			{
				Pattern: pat(t, nil, `"?x"`),
				Guard: GuardFunc(func(ctx context.Context, bs *match.Bindings) (bool, error) {
					return true, bs.Bind("sneaky", value.Bool(true))
				}),
				Body: BodyFunc(func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
					return bs.Len(), nil
				}),
			},
		},
	}, nil)
	checkEvaluations(t, s, []evalTest{
		{`"tacos"`, 1},
	})
}

func TestNotCompiled(t *testing.T) {
	s := &Statement{
		Name: "raw",
		Arms: []*Arm{{Pattern: match.Wild()}},
	}
	_, _, err := s.Evaluate(context.Background(), value.Int(1))
	if _, is := err.(*StatementNotCompiled); !is {
		t.Fatalf("%T %v", err, err)
	}
}

func TestCompileRejectsBadPatterns(t *testing.T) {
	reg := value.NewRegistry()
	for _, arm := range []*Arm{
		{Name: "dup", Pattern: &match.Sequence{Elems: []match.Pattern{&match.Capture{Name: "x"}, &match.Capture{Name: "x"}}}},
		{Name: "class", Pattern: &match.Class{Tag: "Nope"}},
		{Name: "nil"},
	} {
		s := &Statement{
			Name: "bad",
			Arms: []*Arm{{Pattern: match.Wild()}, arm},
		}
		err := s.Compile(context.Background(), reg, nil, true)
		var bad *BadArm
		if !errors.As(err, &bad) {
			t.Fatalf("%s: %T %v", arm.Name, err, err)
		}
		if bad.Index != 1 || bad.Name != arm.Name {
			t.Fatalf("%#v", bad)
		}
		if s.Compiled() {
			t.Fatal("compiled")
		}
	}

	s := &Statement{
		Name: "dup",
		Arms: []*Arm{{Pattern: &match.Sequence{Elems: []match.Pattern{&match.Capture{Name: "x"}, &match.Capture{Name: "x"}}}}},
	}
	err := s.Compile(context.Background(), reg, nil, true)
	var dup *match.DuplicateCapture
	if !errors.As(err, &dup) {
		t.Fatalf("%T %v", err, err)
	}
}

func TestConcurrentEvaluate(t *testing.T) {
	s, err := FactorialStatement(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				x, err := s.MustMatch(context.Background(), value.Int(n%8))
				if err != nil {
					errs <- err
					return
				}
				if _, is := x.(value.Int); !is {
					errs <- fmt.Errorf("%#v", x)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestTraces(t *testing.T) {
	s, err := FactorialStatement(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	sel, ts, err := s.Select(context.Background(), value.Int(-1))
	if err != nil {
		t.Fatal(err)
	}
	if sel.Index != 2 {
		t.Fatal(sel.Index)
	}
	if len(ts.Messages) == 0 {
		t.Fatal("no traces")
	}
	// Traces are JSON-friendly.
	if js := JS(ts); js == "" || js[0] != '{' {
		t.Fatal(js)
	}
}

func TestUpdatableStatement(t *testing.T) {
	ctx := context.Background()
	one := compile(t, &Statement{Name: "one", Arms: []*Arm{{Pattern: match.Wild(), Body: say("one")}}}, nil)
	two := compile(t, &Statement{Name: "two", Arms: []*Arm{{Pattern: match.Wild(), Body: say("two")}}}, nil)

	var s Statementer = NewUpdatableStatement(one)
	if x, _ := s.Statement().MustMatch(ctx, value.Unit{}); x != "one" {
		t.Fatal(x)
	}
	s.(*UpdatableStatement).SetStatement(two)
	if x, _ := s.Statement().MustMatch(ctx, value.Unit{}); x != "two" {
		t.Fatal(x)
	}
}

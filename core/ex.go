package core

import (
	"context"
	"fmt"

	"github.com/Comcast/casematch/match"
	"github.com/Comcast/casematch/value"
)

// FactorialStatement makes a compiled Statement that computes
// factorials recursively.  Negative numbers result in value.Unit.
//
//	case 0 | 1: 1
//	case n if n > 1: n * factorial(n-1)
//	case _: None
func FactorialStatement(ctx context.Context) (*Statement, error) {
	s := &Statement{
		Name: "factorial",
		Arms: []*Arm{
			{
				Pattern: match.Must(match.NewOr(match.Lit(value.Int(0)), match.Lit(value.Int(1)))),
				Body: BodyFunc(func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
					return value.Int(1), nil
				}),
			},
			{
				Pattern: match.Must(match.Bind("n")),
				Guard: GuardFunc(func(ctx context.Context, bs *match.Bindings) (bool, error) {
					n, _ := bs.Get("n")
					i, is := n.(value.Int)
					return is && 1 < i, nil
				}),
				Body: BodyFunc(func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
					n, _ := bs.Get("n")
					i := n.(value.Int)
					x, err := recur(ctx, i-1)
					if err != nil {
						return nil, err
					}
					return i * x.(value.Int), nil
				}),
			},
			{
				Pattern: match.Wild(),
				Body: BodyFunc(func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
					return value.Unit{}, nil
				}),
			},
		},
	}

	if err := s.Compile(ctx, nil, nil, true); err != nil {
		return nil, err
	}

	return s, nil
}

// RegisterTreeClasses registers Tree, Branch(value, left, right) <
// Tree, and Leaf < Tree.
func RegisterTreeClasses(reg *value.Registry) error {
	if reg == nil {
		reg = value.DefaultRegistry
	}
	if err := reg.Register("Tree", nil); err != nil {
		return err
	}
	if err := reg.Register("Branch", []string{"value", "left", "right"}, "Tree"); err != nil {
		return err
	}
	return reg.Register("Leaf", nil, "Tree")
}

// TreeHeightStatement makes a compiled Statement that computes the
// height of a tree.
//
//	case Branch(_, left, right): 1 + max(height(left), height(right))
//	case Leaf(): 0
func TreeHeightStatement(ctx context.Context, reg *value.Registry) (*Statement, error) {
	if err := RegisterTreeClasses(reg); err != nil {
		return nil, err
	}

	s := &Statement{
		Name: "tree_height",
		Arms: []*Arm{
			{
				Pattern: match.Must(match.NewClass(reg, "Branch", []match.Pattern{
					match.Wild(),
					match.Must(match.Bind("left")),
					match.Must(match.Bind("right")),
				})),
				Body: BodyFunc(func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
					var max value.Int
					for _, name := range []string{"left", "right"} {
						sub, _ := bs.Get(name)
						h, err := recur(ctx, sub)
						if err != nil {
							return nil, err
						}
						if max < h.(value.Int) {
							max = h.(value.Int)
						}
					}
					return 1 + max, nil
				}),
			},
			{
				Pattern: match.Must(match.NewClass(reg, "Leaf", nil)),
				Body: BodyFunc(func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
					return value.Int(0), nil
				}),
			},
		},
	}

	if err := s.Compile(ctx, reg, nil, true); err != nil {
		return nil, err
	}

	return s, nil
}

// recur evaluates the running Statement against the given subject.
func recur(ctx context.Context, subject value.Value) (interface{}, error) {
	s, have := StatementFromContext(ctx)
	if !have {
		return nil, fmt.Errorf("no statement to evaluate %s", subject)
	}
	return s.MustMatch(ctx, subject)
}

package extensibility

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/comalice/lsystemx/internal/primitives"
)

// Condition is a compiled predicate over a module's arguments.
type Condition func(args primitives.Args) bool

// ConditionEvaluator evaluates simple comparisons like "age >= 3" or
// "status == adult && height < 2.5" against module arguments.
type ConditionEvaluator struct{}

// NewConditionEvaluator creates a new ConditionEvaluator.
func NewConditionEvaluator() *ConditionEvaluator {
	return &ConditionEvaluator{}
}

type comparison struct {
	key, op, lit string
	num          float64
	isNum        bool
}

var operators = []string{"==", "!=", "<=", ">=", "<", ">"}

// Compile parses expr once. An empty expression always holds. Every argument the
// expression names must be declared by sym.
func (e *ConditionEvaluator) Compile(sym *primitives.Symbol, expr string) (Condition, error) {
	if strings.TrimSpace(expr) == "" {
		return func(primitives.Args) bool { return true }, nil
	}
	var terms []comparison
	for _, clause := range strings.Split(expr, "&&") {
		c, err := parseComparison(clause)
		if err != nil {
			return nil, fmt.Errorf("condition %q: %w", expr, err)
		}
		if sym != nil {
			p, ok := sym.Param(c.key)
			if !ok {
				return nil, fmt.Errorf("%w: condition %q: symbol %q has no argument %q", primitives.ErrValidation, expr, sym.Name(), c.key)
			}
			if p.Type != primitives.TextArg && !c.isNum {
				return nil, fmt.Errorf("%w: condition %q: %q is numeric, %q is not a number", primitives.ErrValidation, expr, c.key, c.lit)
			}
		}
		terms = append(terms, c)
	}
	return func(args primitives.Args) bool {
		for _, c := range terms {
			if !c.eval(args) {
				return false
			}
		}
		return true
	}, nil
}

// Eval compiles and evaluates expr in one step. Malformed expressions are false.
func (e *ConditionEvaluator) Eval(expr string, args primitives.Args) bool {
	cond, err := e.Compile(nil, expr)
	if err != nil {
		return false
	}
	return cond(args)
}

func parseComparison(clause string) (comparison, error) {
	clause = strings.TrimSpace(clause)
	for _, op := range operators {
		i := strings.Index(clause, op)
		if i < 0 {
			continue
		}
		c := comparison{
			key: strings.TrimSpace(clause[:i]),
			op:  op,
			lit: strings.TrimSpace(clause[i+len(op):]),
		}
		if c.key == "" || c.lit == "" || strings.ContainsAny(c.key, " \t") {
			break
		}
		if f, err := strconv.ParseFloat(c.lit, 64); err == nil {
			c.num, c.isNum = f, true
		}
		return c, nil
	}
	return comparison{}, fmt.Errorf("%w: malformed comparison %q", primitives.ErrValidation, clause)
}

func (c comparison) eval(args primitives.Args) bool {
	v, ok := args[c.key]
	if !ok {
		return false
	}
	switch x := v.(type) {
	case int:
		if !c.isNum {
			return false
		}
		return compare(float64(x), c.num, c.op)
	case float64:
		if !c.isNum {
			return false
		}
		return compare(x, c.num, c.op)
	case string:
		return compare(x, c.lit, c.op)
	default:
		return false
	}
}

func compare[T int | float64 | string](a, b T, op string) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	}
	return false
}

// Package filter converts between typed filter parts and expression clauses.
//
// Each value domain (string, number, boolean) has a constructor that builds a
// clause from parts and a destructuring function that recognizes a clause and
// returns its parts. Destructuring never fails: a clause of the wrong shape
// reports ok=false so callers can probe clauses of unknown shape.
package filter

import (
	"errors"
	"fmt"

	"tableflip.dev/dashtab/pkg/clause"
)

// OptionCaseSensitive is the clause option key for case sensitivity.
const OptionCaseSensitive = "case-sensitive"

var (
	// ErrUnsupportedOperator is returned when constructing a clause with an
	// operator outside the domain.
	ErrUnsupportedOperator = errors.New("filter: unsupported operator")
	// ErrColumnType is returned when the column does not belong to the domain.
	ErrColumnType = errors.New("filter: column type does not match filter")
	// ErrValueCount is returned when the operator arity is not met.
	ErrValueCount = errors.New("filter: wrong number of values")
)

// Parts is implemented by every domain's destructured representation.
type Parts interface {
	Describe() string
}

// arity bounds the number of values an operator accepts. max < 0 means
// unbounded.
type arity struct {
	min, max int
}

var (
	noValues  = arity{0, 0}
	oneValue  = arity{1, 1}
	twoValues = arity{2, 2}
	oneOrMore = arity{1, -1}
)

func (a arity) allows(n int) bool {
	if n < a.min {
		return false
	}
	return a.max < 0 || n <= a.max
}

func checkArity(op string, a arity, n int) error {
	if a.allows(n) {
		return nil
	}
	return fmt.Errorf("%w: %q takes %s, got %d", ErrValueCount, op, a, n)
}

func (a arity) String() string {
	switch {
	case a.max < 0:
		return fmt.Sprintf("at least %d", a.min)
	case a.min == a.max:
		return fmt.Sprintf("exactly %d", a.min)
	default:
		return fmt.Sprintf("%d to %d", a.min, a.max)
	}
}

// PartsOf destructures c against every supported domain and returns the
// first match.
func PartsOf(c *clause.Clause) (Parts, bool) {
	if p, ok := StringParts(c); ok {
		return p, true
	}
	if p, ok := NumberParts(c); ok {
		return p, true
	}
	if p, ok := BooleanParts(c); ok {
		return p, true
	}
	return nil, false
}

func operands(c *clause.Clause) (clause.Column, []any, bool) {
	col, ok := c.FirstColumn()
	if !ok {
		return clause.Column{}, nil, false
	}
	return col, c.Args[1:], true
}

func newClause(op string, col clause.Column, values []any) *clause.Clause {
	args := make([]any, 0, len(values)+1)
	args = append(args, col)
	args = append(args, values...)
	return clause.New(op, args...)
}

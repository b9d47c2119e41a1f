package filter

import (
	"fmt"

	"tableflip.dev/dashtab/pkg/clause"
)

// BooleanOperator names a boolean filter operator.
type BooleanOperator string

const (
	BooleanEqual   BooleanOperator = "="
	BooleanIsNull  BooleanOperator = "is-null"
	BooleanNotNull BooleanOperator = "not-null"
)

var booleanOperators = map[BooleanOperator]arity{
	BooleanEqual:   oneValue,
	BooleanIsNull:  noValues,
	BooleanNotNull: noValues,
}

// BooleanFilterParts is the destructured form of a boolean filter clause.
type BooleanFilterParts struct {
	Operator BooleanOperator
	Column   clause.Column
	Values   []bool
}

// BooleanClause builds a clause from parts.
func BooleanClause(p BooleanFilterParts) (*clause.Clause, error) {
	a, ok := booleanOperators[p.Operator]
	if !ok {
		return nil, fmt.Errorf("%w: %q for boolean columns", ErrUnsupportedOperator, p.Operator)
	}
	if !p.Column.IsBoolean() {
		return nil, fmt.Errorf("%w: %s is %s", ErrColumnType, p.Column.DisplayName(), p.Column.BaseType)
	}
	if err := checkArity(string(p.Operator), a, len(p.Values)); err != nil {
		return nil, err
	}
	values := make([]any, len(p.Values))
	for i, v := range p.Values {
		values[i] = v
	}
	return newClause(string(p.Operator), p.Column, values), nil
}

// BooleanParts destructures c.
func BooleanParts(c *clause.Clause) (BooleanFilterParts, bool) {
	if c == nil {
		return BooleanFilterParts{}, false
	}
	op := BooleanOperator(c.Operator)
	a, ok := booleanOperators[op]
	if !ok {
		return BooleanFilterParts{}, false
	}
	col, rest, ok := operands(c)
	if !ok || !col.IsBoolean() || !a.allows(len(rest)) {
		return BooleanFilterParts{}, false
	}
	values := make([]bool, 0, len(rest))
	for _, arg := range rest {
		b, ok := arg.(bool)
		if !ok {
			return BooleanFilterParts{}, false
		}
		values = append(values, b)
	}
	return BooleanFilterParts{Operator: op, Column: col, Values: values}, true
}

func (p BooleanFilterParts) Describe() string {
	name := p.Column.DisplayName()
	switch p.Operator {
	case BooleanIsNull:
		return name + " is empty"
	case BooleanNotNull:
		return name + " is not empty"
	}
	return fmt.Sprintf("%s is %t", name, p.Values[0])
}

package filter

import (
	"fmt"
	"strconv"
	"strings"

	"tableflip.dev/dashtab/pkg/clause"
)

// NumberOperator names a number filter operator.
type NumberOperator string

const (
	NumberEqual          NumberOperator = "="
	NumberNotEqual       NumberOperator = "!="
	NumberGreater        NumberOperator = ">"
	NumberLess           NumberOperator = "<"
	NumberGreaterOrEqual NumberOperator = ">="
	NumberLessOrEqual    NumberOperator = "<="
	NumberBetween        NumberOperator = "between"
	NumberIsNull         NumberOperator = "is-null"
	NumberNotNull        NumberOperator = "not-null"
)

var numberOperators = map[NumberOperator]arity{
	NumberEqual:          oneOrMore,
	NumberNotEqual:       oneOrMore,
	NumberGreater:        oneValue,
	NumberLess:           oneValue,
	NumberGreaterOrEqual: oneValue,
	NumberLessOrEqual:    oneValue,
	NumberBetween:        twoValues,
	NumberIsNull:         noValues,
	NumberNotNull:        noValues,
}

// NumberOperators lists the supported operators in display order.
func NumberOperators() []NumberOperator {
	return []NumberOperator{
		NumberEqual, NumberNotEqual, NumberGreater, NumberLess,
		NumberGreaterOrEqual, NumberLessOrEqual, NumberBetween,
		NumberIsNull, NumberNotNull,
	}
}

// NumberFilterParts is the destructured form of a number filter clause.
type NumberFilterParts struct {
	Operator NumberOperator
	Column   clause.Column
	Values   []float64
}

// NumberClause builds a clause from parts.
func NumberClause(p NumberFilterParts) (*clause.Clause, error) {
	a, ok := numberOperators[p.Operator]
	if !ok {
		return nil, fmt.Errorf("%w: %q for number columns", ErrUnsupportedOperator, p.Operator)
	}
	if !p.Column.IsNumeric() {
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

// NumberParts destructures c. It reports false unless c uses a number
// operator on a numeric column with numeric literal operands.
func NumberParts(c *clause.Clause) (NumberFilterParts, bool) {
	if c == nil {
		return NumberFilterParts{}, false
	}
	op := NumberOperator(c.Operator)
	a, ok := numberOperators[op]
	if !ok {
		return NumberFilterParts{}, false
	}
	col, rest, ok := operands(c)
	if !ok || !col.IsNumeric() || !a.allows(len(rest)) {
		return NumberFilterParts{}, false
	}
	values := make([]float64, 0, len(rest))
	for _, arg := range rest {
		f, ok := toFloat(arg)
		if !ok {
			return NumberFilterParts{}, false
		}
		values = append(values, f)
	}
	return NumberFilterParts{Operator: op, Column: col, Values: values}, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Describe renders the filter for display.
func (p NumberFilterParts) Describe() string {
	name := p.Column.DisplayName()
	nums := make([]string, len(p.Values))
	for i, v := range p.Values {
		nums[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	switch p.Operator {
	case NumberBetween:
		return fmt.Sprintf("%s between %s and %s", name, nums[0], nums[1])
	case NumberIsNull:
		return name + " is null"
	case NumberNotNull:
		return name + " is not null"
	case NumberEqual:
		return fmt.Sprintf("%s is %s", name, strings.Join(nums, " or "))
	case NumberNotEqual:
		return fmt.Sprintf("%s is not %s", name, strings.Join(nums, " or "))
	}
	return fmt.Sprintf("%s %s %s", name, p.Operator, strings.Join(nums, ", "))
}

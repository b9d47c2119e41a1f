package filter

import (
	"fmt"
	"strings"

	"tableflip.dev/dashtab/pkg/clause"
)

// StringOperator names a string filter operator.
type StringOperator string

const (
	StringEqual          StringOperator = "="
	StringNotEqual       StringOperator = "!="
	StringContains       StringOperator = "contains"
	StringDoesNotContain StringOperator = "does-not-contain"
	StringStartsWith     StringOperator = "starts-with"
	StringEndsWith       StringOperator = "ends-with"
	StringIsNull         StringOperator = "is-null"
	StringNotNull        StringOperator = "not-null"
	StringIsEmpty        StringOperator = "is-empty"
	StringNotEmpty       StringOperator = "not-empty"
)

type stringOperatorInfo struct {
	arity arity
	// caseOption marks operators that carry the case-sensitive option.
	caseOption bool
}

var stringOperators = map[StringOperator]stringOperatorInfo{
	StringEqual:          {arity: oneOrMore},
	StringNotEqual:       {arity: oneOrMore},
	StringContains:       {arity: oneValue, caseOption: true},
	StringDoesNotContain: {arity: oneValue, caseOption: true},
	StringStartsWith:     {arity: oneValue, caseOption: true},
	StringEndsWith:       {arity: oneValue, caseOption: true},
	StringIsNull:         {arity: noValues},
	StringNotNull:        {arity: noValues},
	StringIsEmpty:        {arity: noValues},
	StringNotEmpty:       {arity: noValues},
}

// StringOperators lists the supported operators in display order.
func StringOperators() []StringOperator {
	return []StringOperator{
		StringEqual, StringNotEqual, StringContains, StringDoesNotContain,
		StringStartsWith, StringEndsWith, StringIsNull, StringNotNull,
		StringIsEmpty, StringNotEmpty,
	}
}

// StringOptions are the options of a string filter. CaseSensitive is nil for
// operators that do not take the option.
type StringOptions struct {
	CaseSensitive *bool
}

// StringFilterParts is the destructured form of a string filter clause.
type StringFilterParts struct {
	Operator StringOperator
	Column   clause.Column
	Values   []string
	Options  StringOptions
}

// StringClause builds a clause from parts. The case-sensitive option is
// defaulted to false for text-match operators and dropped for the others.
func StringClause(p StringFilterParts) (*clause.Clause, error) {
	info, ok := stringOperators[p.Operator]
	if !ok {
		return nil, fmt.Errorf("%w: %q for string columns", ErrUnsupportedOperator, p.Operator)
	}
	if !p.Column.IsString() {
		return nil, fmt.Errorf("%w: %s is %s", ErrColumnType, p.Column.DisplayName(), p.Column.BaseType)
	}
	if err := checkArity(string(p.Operator), info.arity, len(p.Values)); err != nil {
		return nil, err
	}
	values := make([]any, len(p.Values))
	for i, v := range p.Values {
		values[i] = v
	}
	c := newClause(string(p.Operator), p.Column, values)
	if info.caseOption {
		c.WithOptions(map[string]any{OptionCaseSensitive: caseSensitive(p.Options)})
	}
	return c, nil
}

// StringParts destructures c. It reports false unless c uses a string
// operator on a string column with string literal operands.
func StringParts(c *clause.Clause) (StringFilterParts, bool) {
	if c == nil {
		return StringFilterParts{}, false
	}
	op := StringOperator(c.Operator)
	info, ok := stringOperators[op]
	if !ok {
		return StringFilterParts{}, false
	}
	col, rest, ok := operands(c)
	if !ok || !col.IsString() || !info.arity.allows(len(rest)) {
		return StringFilterParts{}, false
	}
	values := make([]string, 0, len(rest))
	for _, arg := range rest {
		s, ok := arg.(string)
		if !ok {
			return StringFilterParts{}, false
		}
		values = append(values, s)
	}
	parts := StringFilterParts{Operator: op, Column: col, Values: values}
	if info.caseOption {
		cs := false
		if v, ok := c.Option(OptionCaseSensitive); ok {
			b, isBool := v.(bool)
			if !isBool {
				return StringFilterParts{}, false
			}
			cs = b
		}
		parts.Options.CaseSensitive = &cs
	}
	return parts, true
}

func caseSensitive(o StringOptions) bool {
	return o.CaseSensitive != nil && *o.CaseSensitive
}

// Describe renders the filter for display.
func (p StringFilterParts) Describe() string {
	name := p.Column.DisplayName()
	quoted := make([]string, len(p.Values))
	for i, v := range p.Values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	var label string
	switch p.Operator {
	case StringEqual:
		label = fmt.Sprintf("%s is %s", name, strings.Join(quoted, " or "))
	case StringNotEqual:
		label = fmt.Sprintf("%s is not %s", name, strings.Join(quoted, " or "))
	case StringIsNull:
		label = name + " is null"
	case StringNotNull:
		label = name + " is not null"
	case StringIsEmpty:
		label = name + " is empty"
	case StringNotEmpty:
		label = name + " is not empty"
	default:
		label = fmt.Sprintf("%s %s %s", name, strings.ReplaceAll(string(p.Operator), "-", " "), strings.Join(quoted, ", "))
	}
	if p.Options.CaseSensitive != nil && *p.Options.CaseSensitive {
		label += " (case sensitive)"
	}
	return label
}

// Package filter builds filter clauses from command line arguments and
// destructures clause JSON back into filter parts.
package filter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"tableflip.dev/dashtab/pkg/clause"
	"tableflip.dev/dashtab/pkg/filter"
	"tableflip.dev/dashtab/pkg/printers"
)

const (
	DomainString  = "string"
	DomainNumber  = "number"
	DomainBoolean = "boolean"
)

// Build encodes a filter clause and prints its JSON.
type Build struct {
	Domain   string
	Operator string
	Column   string
	Values   []string
	// CaseSensitive is only read by string filters; nil keeps the default.
	CaseSensitive *bool
	JSON          bool
}

func (b *Build) Do(_ context.Context) error {
	col, err := clause.ParseColumn(b.Column)
	if err != nil {
		return err
	}
	c, err := b.clause(col)
	if err != nil {
		return err
	}
	return show(c, b.JSON)
}

func (b *Build) clause(col clause.Column) (*clause.Clause, error) {
	switch b.Domain {
	case DomainString:
		return filter.StringClause(filter.StringFilterParts{
			Operator: filter.StringOperator(b.Operator),
			Column:   col,
			Values:   b.Values,
			Options:  filter.StringOptions{CaseSensitive: b.CaseSensitive},
		})
	case DomainNumber:
		values := make([]float64, 0, len(b.Values))
		for _, v := range b.Values {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("value %q is not a number", v)
			}
			values = append(values, f)
		}
		return filter.NumberClause(filter.NumberFilterParts{
			Operator: filter.NumberOperator(b.Operator),
			Column:   col,
			Values:   values,
		})
	case DomainBoolean:
		values := make([]bool, 0, len(b.Values))
		for _, v := range b.Values {
			x, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("value %q is not a boolean", v)
			}
			values = append(values, x)
		}
		return filter.BooleanClause(filter.BooleanFilterParts{
			Operator: filter.BooleanOperator(b.Operator),
			Column:   col,
			Values:   values,
		})
	}
	return nil, fmt.Errorf("unknown filter domain %q", b.Domain)
}

// Parse destructures clause JSON.
type Parse struct {
	Raw  string
	JSON bool
}

func (p *Parse) Do(_ context.Context) error {
	raw := strings.TrimSpace(p.Raw)
	if raw == "" {
		return errors.New("clause JSON is required")
	}
	c, err := clause.Parse([]byte(raw))
	if err != nil {
		return err
	}
	parts, ok := filter.PartsOf(c)
	if !ok {
		return fmt.Errorf("%s is not a supported filter", raw)
	}
	if p.JSON {
		return printers.JSON(parts)
	}
	_, _ = fmt.Fprintln(color.Output, parts.Describe())
	return nil
}

func show(c *clause.Clause, asJSON bool) error {
	b, err := c.MarshalJSON()
	if err != nil {
		return err
	}
	if asJSON {
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}
	if parts, ok := filter.PartsOf(c); ok {
		f := color.New(color.Faint)
		_, _ = f.Fprintln(color.Output, parts.Describe())
	}
	_, _ = fmt.Fprintln(color.Output, string(b))
	return nil
}

// Package clause models query expressions as a tagged tree: an operator, an
// optional options map, and operands. It is the storage form of filters.
package clause

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Clause is a single expression node. Args holds Column, string, float64,
// bool, nil or *Clause values.
type Clause struct {
	Operator string
	Options  map[string]any
	Args     []any
}

// New builds a clause with the given operator and operands.
func New(operator string, args ...any) *Clause {
	return &Clause{Operator: operator, Args: args}
}

// WithOptions returns c with opts attached. An empty map clears the options.
func (c *Clause) WithOptions(opts map[string]any) *Clause {
	if len(opts) == 0 {
		c.Options = nil
		return c
	}
	c.Options = make(map[string]any, len(opts))
	for k, v := range opts {
		c.Options[k] = v
	}
	return c
}

// Option reads a single option value.
func (c *Clause) Option(name string) (any, bool) {
	if c == nil || c.Options == nil {
		return nil, false
	}
	v, ok := c.Options[name]
	return v, ok
}

// FirstColumn returns the first operand when it is a column reference.
func (c *Clause) FirstColumn() (Column, bool) {
	if c == nil || len(c.Args) == 0 {
		return Column{}, false
	}
	col, ok := c.Args[0].(Column)
	return col, ok
}

// MarshalJSON encodes the clause as `[op, {options}?, args...]`.
func (c *Clause) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	if c.Operator == "" {
		return nil, errors.New("clause: operator required")
	}
	out := make([]any, 0, len(c.Args)+2)
	out = append(out, c.Operator)
	if len(c.Options) > 0 {
		out = append(out, c.Options)
	}
	out = append(out, c.Args...)
	return json.Marshal(out)
}

// UnmarshalJSON decodes the vector form produced by MarshalJSON.
func (c *Clause) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("clause: expected array: %w", err)
	}
	if len(parts) == 0 {
		return errors.New("clause: empty expression")
	}
	var op string
	if err := json.Unmarshal(parts[0], &op); err != nil || op == "" {
		return errors.New("clause: first element must be an operator name")
	}
	*c = Clause{Operator: op}
	rest := parts[1:]
	if len(rest) > 0 && isObject(rest[0]) {
		opts := map[string]any{}
		if err := json.Unmarshal(rest[0], &opts); err != nil {
			return fmt.Errorf("clause: options: %w", err)
		}
		if len(opts) > 0 {
			c.Options = opts
		}
		rest = rest[1:]
	}
	c.Args = make([]any, 0, len(rest))
	for i, raw := range rest {
		arg, err := decodeArg(raw)
		if err != nil {
			return fmt.Errorf("clause: %s operand %d: %w", op, i, err)
		}
		c.Args = append(c.Args, arg)
	}
	return nil
}

// Parse decodes a clause from its JSON vector form.
func Parse(data []byte) (*Clause, error) {
	c := &Clause{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeArg(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if isFieldRef(trimmed) {
			var col Column
			if err := json.Unmarshal(trimmed, &col); err != nil {
				return nil, err
			}
			return col, nil
		}
		nested := &Clause{}
		if err := json.Unmarshal(trimmed, nested); err != nil {
			return nil, err
		}
		return nested, nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, err
	}
	switch v.(type) {
	case nil, string, float64, bool:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported literal %s", string(trimmed))
	}
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func isFieldRef(raw []byte) bool {
	var head []json.RawMessage
	if err := json.Unmarshal(raw, &head); err != nil || len(head) == 0 {
		return false
	}
	var tag string
	return json.Unmarshal(head[0], &tag) == nil && tag == fieldTag
}

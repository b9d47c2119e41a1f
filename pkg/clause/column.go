package clause

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const fieldTag = "field"

// BaseType is the storage type of a column.
type BaseType string

const (
	TypeText       BaseType = "type/Text"
	TypeTextLike   BaseType = "type/TextLike"
	TypeNumber     BaseType = "type/Number"
	TypeInteger    BaseType = "type/Integer"
	TypeBigInteger BaseType = "type/BigInteger"
	TypeFloat      BaseType = "type/Float"
	TypeDecimal    BaseType = "type/Decimal"
	TypeBoolean    BaseType = "type/Boolean"
	TypeDateTime   BaseType = "type/DateTime"
)

// Column references a field of a table in the data model.
type Column struct {
	ID       int
	Name     string
	Table    string
	BaseType BaseType
}

func (c Column) IsString() bool {
	return c.BaseType == TypeText || c.BaseType == TypeTextLike
}

func (c Column) IsNumeric() bool {
	switch c.BaseType {
	case TypeNumber, TypeInteger, TypeBigInteger, TypeFloat, TypeDecimal:
		return true
	}
	return false
}

func (c Column) IsBoolean() bool {
	return c.BaseType == TypeBoolean
}

// DisplayName is TABLE.NAME when the table is known.
func (c Column) DisplayName() string {
	if c.Table == "" {
		return c.Name
	}
	return c.Table + "." + c.Name
}

type columnOptions struct {
	BaseType BaseType `json:"base-type,omitempty"`
	Name     string   `json:"name,omitempty"`
	Table    string   `json:"table,omitempty"`
}

// MarshalJSON encodes the column as `["field", id, {options}]`.
func (c Column) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{fieldTag, c.ID, columnOptions{BaseType: c.BaseType, Name: c.Name, Table: c.Table}})
}

func (c *Column) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) < 2 {
		return errors.New("clause: field reference needs an id")
	}
	var tag string
	if err := json.Unmarshal(parts[0], &tag); err != nil || tag != fieldTag {
		return fmt.Errorf("clause: not a field reference")
	}
	var id int
	if err := json.Unmarshal(parts[1], &id); err != nil {
		return fmt.Errorf("clause: field id: %w", err)
	}
	var opts columnOptions
	if len(parts) > 2 {
		if err := json.Unmarshal(parts[2], &opts); err != nil {
			return fmt.Errorf("clause: field options: %w", err)
		}
	}
	*c = Column{ID: id, Name: opts.Name, Table: opts.Table, BaseType: opts.BaseType}
	return nil
}

// ParseColumn reads the CLI shorthand `ID:NAME:BASETYPE`, for example
// `4:CATEGORY:type/Text`. Table may prefix the name as TABLE.NAME.
func ParseColumn(s string) (Column, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 3)
	if len(parts) != 3 {
		return Column{}, fmt.Errorf("column %q: want ID:NAME:TYPE", s)
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return Column{}, fmt.Errorf("column %q: bad id: %w", s, err)
	}
	col := Column{ID: id, Name: parts[1], BaseType: BaseType(parts[2])}
	if idx := strings.LastIndex(col.Name, "."); idx > 0 {
		col.Table, col.Name = col.Name[:idx], col.Name[idx+1:]
	}
	if !strings.HasPrefix(string(col.BaseType), "type/") {
		col.BaseType = BaseType("type/" + string(col.BaseType))
	}
	return col, nil
}

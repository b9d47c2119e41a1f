package clause

import (
	"encoding/json"
	"reflect"
	"testing"
)

var category = Column{ID: 4, Name: "CATEGORY", Table: "PRODUCTS", BaseType: TypeText}

func TestClauseJSONVectorForm(t *testing.T) {
	c := New("starts-with", category, "Gadget").WithOptions(map[string]any{"case-sensitive": false})
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `["starts-with",{"case-sensitive":false},["field",4,{"base-type":"type/Text","name":"CATEGORY","table":"PRODUCTS"}],"Gadget"]`
	if string(b) != want {
		t.Fatalf("unexpected json:\n got %s\nwant %s", b, want)
	}

	parsed, err := Parse(b)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(parsed, c) {
		t.Fatalf("parsed clause differs: %#v vs %#v", parsed, c)
	}
}

func TestClauseWithoutOptions(t *testing.T) {
	b, err := json.Marshal(New("between", category, 1.0, 2.0))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	parsed, err := Parse(b)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Options != nil {
		t.Fatalf("expected no options, got %v", parsed.Options)
	}
	if len(parsed.Args) != 3 || parsed.Args[1] != 1.0 || parsed.Args[2] != 2.0 {
		t.Fatalf("unexpected args: %#v", parsed.Args)
	}
	if col, ok := parsed.FirstColumn(); !ok || col.ID != 4 {
		t.Fatalf("expected first column, got %#v", parsed.Args[0])
	}
}

func TestClauseNested(t *testing.T) {
	parsed, err := Parse([]byte(`["and", ["=", ["field", 1, null], "A"], ["not-null", ["field", 2]]]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed.Args) != 2 {
		t.Fatalf("expected 2 operands, got %d", len(parsed.Args))
	}
	inner, ok := parsed.Args[0].(*Clause)
	if !ok || inner.Operator != "=" {
		t.Fatalf("expected nested = clause, got %#v", parsed.Args[0])
	}
	if col, ok := inner.FirstColumn(); !ok || col.ID != 1 {
		t.Fatalf("expected field 1, got %#v", inner.Args[0])
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	for _, in := range []string{`{}`, `[]`, `[1, 2]`, `["=", {"a": 1}, {"b": 2}]`} {
		if _, err := Parse([]byte(in)); err == nil {
			t.Fatalf("expected error for %s", in)
		}
	}
}

func TestParseColumn(t *testing.T) {
	tests := []struct {
		in      string
		want    Column
		wantErr bool
	}{
		{in: "4:PRODUCTS.CATEGORY:type/Text", want: category},
		{in: "7:TOTAL:Float", want: Column{ID: 7, Name: "TOTAL", BaseType: TypeFloat}},
		{in: "x:TOTAL:Float", wantErr: true},
		{in: "TOTAL", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseColumn(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("%s: expected %#v, got %#v", tt.in, tt.want, got)
		}
	}
}

func TestColumnDomains(t *testing.T) {
	if !category.IsString() || category.IsNumeric() || category.IsBoolean() {
		t.Fatalf("category should be a string column only")
	}
	total := Column{BaseType: TypeFloat}
	if !total.IsNumeric() || total.IsString() {
		t.Fatalf("float column should be numeric")
	}
}

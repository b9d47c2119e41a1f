package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/dashtab/pkg/clause"
	"tableflip.dev/dashtab/pkg/filter"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := color.Output
	color.Output = buf
	t.Cleanup(func() { color.Output = prev })
	return buf
}

func TestBuild(t *testing.T) {
	tests := map[string]struct {
		build   Build
		wantOp  string
		wantErr error
	}{
		"number between": {
			build:  Build{Domain: DomainNumber, Operator: "between", Column: "7:PRICE:Float", Values: []string{"10", "20.5"}},
			wantOp: "between",
		},
		"boolean": {
			build:  Build{Domain: DomainBoolean, Operator: "=", Column: "9:ACTIVE:Boolean", Values: []string{"true"}},
			wantOp: "=",
		},
		"string is-empty": {
			build:  Build{Domain: DomainString, Operator: "is-empty", Column: "4:NAME:Text"},
			wantOp: "is-empty",
		},
		"wrong column type": {
			build:   Build{Domain: DomainNumber, Operator: "=", Column: "4:NAME:Text", Values: []string{"1"}},
			wantErr: filter.ErrColumnType,
		},
		"too many values": {
			build:   Build{Domain: DomainNumber, Operator: ">", Column: "7:PRICE:Float", Values: []string{"1", "2"}},
			wantErr: filter.ErrValueCount,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			buf := capture(t)
			b := tc.build
			b.JSON = true
			err := b.Do(context.Background())
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			c, err := clause.Parse(bytes.TrimSpace(buf.Bytes()))
			if err != nil {
				t.Fatalf("parse output %q: %v", buf.String(), err)
			}
			if c.Operator != tc.wantOp {
				t.Fatalf("operator = %q, want %q", c.Operator, tc.wantOp)
			}
			if _, ok := filter.PartsOf(c); !ok {
				t.Fatalf("output %s should destructure", buf.String())
			}
		})
	}
}

func TestBuildRejectsBadValues(t *testing.T) {
	capture(t)
	for _, b := range []Build{
		{Domain: DomainNumber, Operator: "=", Column: "7:PRICE:Float", Values: []string{"ten"}},
		{Domain: DomainBoolean, Operator: "=", Column: "9:ACTIVE:Boolean", Values: []string{"maybe"}},
		{Domain: "date", Operator: "=", Column: "9:ACTIVE:Boolean"},
		{Domain: DomainString, Operator: "=", Column: "NAME", Values: []string{"a"}},
	} {
		if err := b.Do(context.Background()); err == nil {
			t.Fatalf("expected error for %+v", b)
		}
	}
}

func TestParse(t *testing.T) {
	buf := capture(t)
	p := Parse{Raw: `["between",["field",7,{"base-type":"type/Float"}],1,2]`, JSON: true}
	if err := p.Do(context.Background()); err != nil {
		t.Fatalf("parse: %v", err)
	}
	var parts filter.NumberFilterParts
	if err := json.Unmarshal(buf.Bytes(), &parts); err != nil {
		t.Fatalf("decode parts: %v", err)
	}
	if parts.Operator != filter.NumberBetween || len(parts.Values) != 2 || parts.Column.ID != 7 {
		t.Fatalf("unexpected parts %+v", parts)
	}

	buf.Reset()
	p = Parse{Raw: `["and",["=",["field",1,null],"A"]]`}
	if err := p.Do(context.Background()); err == nil || !strings.Contains(err.Error(), "not a supported filter") {
		t.Fatalf("expected unsupported filter error, got %v", err)
	}
}

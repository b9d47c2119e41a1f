package options

import (
	"testing"

	"tableflip.dev/dashtab/pkg/dashboard"
)

func TestParseTab(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    dashboard.TabID
		wantErr bool
	}{
		"saved id":   {in: "12", want: 12},
		"unsaved id": {in: "-4", want: -4},
		"slug":       {in: "12-revenue", want: 12},
		"padded":     {in: " 3 ", want: 3},
		"name only":  {in: "revenue", wantErr: true},
		"empty":      {in: "", wantErr: true},
		"zero slug":  {in: "0-none", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseTab(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %d", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse %q: %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("parse %q = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	x, y, err := ParseSize("6X4")
	if err != nil || x != 6 || y != 4 {
		t.Fatalf("ParseSize = %d, %d, %v", x, y, err)
	}
	for _, bad := range []string{"6", "0x4", "6x-1", "axb", ""} {
		if _, _, err := ParseSize(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestDashboardID(t *testing.T) {
	o := &DashboardOptions{}
	if _, err := o.DashboardID(); err == nil {
		t.Fatal("expected error without a dashboard")
	}
	o.ID = 7
	if id, err := o.DashboardID(); err != nil || id != 7 {
		t.Fatalf("DashboardID = %d, %v", id, err)
	}
}

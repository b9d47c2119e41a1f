// Package options defines shared flag helpers for CLI commands.
package options

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/dashtab/pkg/dashboard"
)

// ErrDashboardRequired is returned when --dashboard is missing.
var ErrDashboardRequired = errors.New("a dashboard id is required, set --dashboard")

// DashboardOptions selects the dashboard a command edits.
type DashboardOptions struct {
	ID int
}

// AddDashboardArgs registers --dashboard/-d.
func AddDashboardArgs(cmd *cobra.Command, o *DashboardOptions) {
	cmd.PersistentFlags().IntVarP(&o.ID, "dashboard", "d", 0,
		"Specify the dashboard id.")
}

// DashboardID validates the flag value.
func (o *DashboardOptions) DashboardID() (dashboard.DashboardID, error) {
	if o.ID <= 0 {
		return 0, ErrDashboardRequired
	}
	return dashboard.DashboardID(o.ID), nil
}

// ParseTab accepts a tab id (negative for unsaved tabs) or a tab slug such as
// `12-sales`.
func ParseTab(s string) (dashboard.TabID, error) {
	s = strings.TrimSpace(s)
	if id, err := strconv.Atoi(s); err == nil {
		return dashboard.TabID(id), nil
	}
	if id, ok := dashboard.IDFromSlug(s); ok {
		return id, nil
	}
	return 0, fmt.Errorf("tab %q: want an id or a slug", s)
}

// ParseSize reads WxH, for example `4x3`.
func ParseSize(s string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q: want WxH", s)
	}
	x, err := strconv.Atoi(w)
	if err != nil || x <= 0 {
		return 0, 0, fmt.Errorf("size %q: bad width", s)
	}
	y, err := strconv.Atoi(h)
	if err != nil || y <= 0 {
		return 0, 0, fmt.Errorf("size %q: bad height", s)
	}
	return x, y, nil
}

package options

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/dashtab/pkg/dashboard"
	"tableflip.dev/dashtab/pkg/filter"
	"tableflip.dev/dashtab/pkg/session"
	"tableflip.dev/dashtab/pkg/store"
	"tableflip.dev/dashtab/pkg/undo"
)

// OutputOptions selects between pretty and JSON output.
type OutputOptions struct {
	JSON bool
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

// Error kinds reported in JSON mode.
const (
	KindUsage        = "usage"
	KindInvariant    = "invariant"
	KindNotFound     = "not_found"
	KindUndoNotFound = "undo_not_found"
	KindNoDashboard  = "no_dashboard"
	KindFilter       = "filter"
	KindInternal     = "internal"
)

// ErrorOutput is what a failed command prints in JSON mode.
type ErrorOutput struct {
	Error     string                `json:"error"`
	Kind      string                `json:"kind"`
	Dashboard dashboard.DashboardID `json:"dashboard,omitempty"`
}

// ErrorKind sorts err into one of the Kind constants.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrDashboardRequired):
		return KindUsage
	case errors.Is(err, dashboard.ErrInvariantViolation):
		return KindInvariant
	case errors.Is(err, undo.ErrNotFound):
		return KindUndoNotFound
	case errors.Is(err, store.ErrNotFound):
		return KindNotFound
	case errors.Is(err, session.ErrNoDashboard):
		return KindNoDashboard
	case errors.Is(err, filter.ErrUnsupportedOperator),
		errors.Is(err, filter.ErrColumnType),
		errors.Is(err, filter.ErrValueCount):
		return KindFilter
	}
	return KindInternal
}

// HandleError reports err as an ErrorOutput in JSON mode and swallows it so
// cobra does not print usage on top.
func (o *OutputOptions) HandleError(err error) error {
	return o.HandleEditError(0, err)
}

// HandleEditError is HandleError for commands that edit dashboard id.
func (o *OutputOptions) HandleEditError(id dashboard.DashboardID, err error) error {
	if !o.JSON || err == nil {
		return err
	}
	b, merr := json.Marshal(ErrorOutput{Error: err.Error(), Kind: ErrorKind(err), Dashboard: id})
	if merr != nil {
		return merr
	}
	_, _ = fmt.Fprintln(color.Output, string(b))
	return nil
}

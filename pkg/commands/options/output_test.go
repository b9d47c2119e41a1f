package options

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/dashtab/pkg/dashboard"
	"tableflip.dev/dashtab/pkg/filter"
	"tableflip.dev/dashtab/pkg/session"
	"tableflip.dev/dashtab/pkg/store"
	"tableflip.dev/dashtab/pkg/undo"
)

func TestErrorKind(t *testing.T) {
	tests := map[string]struct {
		err  error
		want string
	}{
		"missing flag":  {err: ErrDashboardRequired, want: KindUsage},
		"invariant":     {err: fmt.Errorf("move: %w", dashboard.ErrInvariantViolation), want: KindInvariant},
		"undo":          {err: fmt.Errorf("%w: abc", undo.ErrNotFound), want: KindUndoNotFound},
		"store":         {err: fmt.Errorf("%w: dashboard 9", store.ErrNotFound), want: KindNotFound},
		"no dashboard":  {err: session.ErrNoDashboard, want: KindNoDashboard},
		"filter arity":  {err: fmt.Errorf("between: %w", filter.ErrValueCount), want: KindFilter},
		"filter column": {err: filter.ErrColumnType, want: KindFilter},
		"anything else": {err: errors.New("disk full"), want: KindInternal},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := ErrorKind(tc.err); got != tc.want {
				t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestHandleEditError(t *testing.T) {
	buf := &bytes.Buffer{}
	prev := color.Output
	color.Output = buf
	t.Cleanup(func() { color.Output = prev })

	err := fmt.Errorf("%w: tab 3 not found", dashboard.ErrInvariantViolation)

	o := &OutputOptions{}
	if got := o.HandleEditError(4, err); got != err {
		t.Fatalf("pretty mode should return the error, got %v", got)
	}
	if buf.Len() != 0 {
		t.Fatalf("pretty mode should not print, got %q", buf.String())
	}

	o.JSON = true
	if got := o.HandleEditError(4, err); got != nil {
		t.Fatalf("JSON mode should swallow the error, got %v", got)
	}
	var out ErrorOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if out.Error != err.Error() || out.Kind != KindInvariant || out.Dashboard != 4 {
		t.Fatalf("unexpected output %+v", out)
	}

	buf.Reset()
	if got := o.HandleError(nil); got != nil || buf.Len() != 0 {
		t.Fatalf("nil error should print nothing, got %v %q", got, buf.String())
	}
	if got := o.HandleError(ErrDashboardRequired); got != nil {
		t.Fatalf("JSON mode should swallow the error, got %v", got)
	}
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if _, ok := m["dashboard"]; ok || m["kind"] != KindUsage {
		t.Fatalf("unexpected output %v", m)
	}
}

package printers

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
)

// JSON writes v as indented JSON.
func JSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(color.Output, string(b))
	return err
}

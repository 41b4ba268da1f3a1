package routegen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/broady/routegen/diagnostic"
	"github.com/broady/routegen/internal/scan"
)

var (
	// ErrNoPackages is returned when the patterns match no packages.
	ErrNoPackages = scan.ErrNoPackages

	// ErrInvalidConfig is wrapped by every configuration error.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ConflictError is returned in strict mode when route conflicts were found.
// Generated files are not written in that case.
type ConflictError struct {
	Diagnostics []diagnostic.Diagnostic
}

func (e *ConflictError) Error() string {
	if len(e.Diagnostics) == 1 {
		return "route conflict: " + e.Diagnostics[0].String()
	}
	lines := make([]string, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		lines = append(lines, "  "+d.String())
	}
	return fmt.Sprintf("%d route conflicts:\n%s", len(e.Diagnostics), strings.Join(lines, "\n"))
}

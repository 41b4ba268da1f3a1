package check

import (
	"context"
	"errors"
	"fmt"

	"github.com/broady/routegen"
	"github.com/broady/routegen/cmd/routegen/internal/scanflags"
)

type Cmd struct {
	scanflags.Flags `embed:""`
}

func (c *Cmd) Run(ctx context.Context) error {
	result, err := c.Generator().Check(ctx)
	var conflict *routegen.ConflictError
	if err != nil && !errors.As(err, &conflict) {
		return err
	}

	out := c.Writer()
	fmt.Fprintf(out, "✓ %d groups, %d endpoints\n", len(result.Groups), result.Endpoints())
	for _, d := range result.Diagnostics {
		fmt.Fprintf(out, "⚠ %s\n", d)
	}
	if conflict != nil {
		return fmt.Errorf("%d route conflicts (strict)", len(conflict.Diagnostics))
	}
	if len(result.Diagnostics) == 0 {
		fmt.Fprintln(out, "✓ No route conflicts")
	}
	return nil
}

package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/seam/cli/render"
	"github.com/justapithecus/seam/runtime"
)

// PendingCommand returns the pending command.
// Pending lists asset-partitions the next run would consider outstanding.
func PendingCommand() *cli.Command {
	flags := ReadOnlyFlags()
	flags = append(flags, StoreFlags()...)

	return &cli.Command{
		Name:   "pending",
		Usage:  "List asset-partitions currently in state pending",
		Flags:  flags,
		Action: pendingAction,
	}
}

func pendingAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	st, err := buildStore(c.Context, c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid store config: %v", err), runtime.ExitCodeConfig)
	}
	defer func() { _ = st.Close() }()

	records, err := st.ListPending(c.Context)
	if err != nil {
		return fmt.Errorf("store read failed: %w", err)
	}

	if c.Bool("tui") {
		return r.RenderTUI("status_pending", records)
	}
	return r.Render(records)
}

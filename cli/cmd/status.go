package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/seam/cli/render"
	"github.com/justapithecus/seam/runtime"
	"github.com/justapithecus/seam/types"
)

// StatusCommand returns the status command.
// Status reads run records from the store; it never executes work.
func StatusCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "asset",
			Aliases:  []string{"a"},
			Usage:    "Asset to show partition status for",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "partition",
			Aliases: []string{"p"},
			Usage:   "Show one partition key only (dim=value|dim=value)",
		},
	}
	flags = append(flags, ReadOnlyFlags()...)
	flags = append(flags, StoreFlags()...)

	return &cli.Command{
		Name:   "status",
		Usage:  "Show run records for an asset's partitions",
		Flags:  flags,
		Action: statusAction,
	}
}

func statusAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	st, err := buildStore(c.Context, c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid store config: %v", err), runtime.ExitCodeConfig)
	}
	defer func() { _ = st.Close() }()

	asset := c.String("asset")

	if p := c.String("partition"); p != "" {
		key, err := types.ParsePartitionKey(p)
		if err != nil {
			return cli.Exit(fmt.Sprintf("invalid partition key: %v", err), runtime.ExitCodeConfig)
		}
		rec, err := st.Get(c.Context, asset, key)
		if err != nil {
			return fmt.Errorf("store read failed: %w", err)
		}
		if rec == nil {
			return cli.Exit(fmt.Sprintf("no run record for %s %s", asset, key), 1)
		}
		if c.Bool("tui") {
			return r.RenderTUI("status_asset", []*types.RunRecord{rec})
		}
		return r.Render(rec)
	}

	records, err := st.ListByAsset(c.Context, asset)
	if err != nil {
		return fmt.Errorf("store read failed: %w", err)
	}

	if c.Bool("tui") {
		return r.RenderTUI("status_asset", records)
	}
	return r.Render(records)
}

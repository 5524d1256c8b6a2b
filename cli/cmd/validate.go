package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/seam/check"
	"github.com/justapithecus/seam/cli/render"
	"github.com/justapithecus/seam/config"
	"github.com/justapithecus/seam/graph"
	"github.com/justapithecus/seam/partition"
	"github.com/justapithecus/seam/runtime"
)

// ValidateResponse summarizes a successfully validated pipeline.
type ValidateResponse struct {
	Valid  bool                    `json:"valid"`
	Assets []ValidateAssetResponse `json:"assets"`
}

// ValidateAssetResponse summarizes one asset, in topological order.
type ValidateAssetResponse struct {
	Name       string   `json:"name"`
	Dimensions []string `json:"dimensions,omitempty"`
	Partitions int      `json:"partitions"`
	DependsOn  []string `json:"depends_on,omitempty"`
	Checks     int      `json:"checks"`
}

// ValidateCommand returns the validate command.
// Validates the pipeline config without executing anything.
func ValidateCommand() *cli.Command {
	flags := []cli.Flag{ConfigFlag}
	flags = append(flags, ReadOnlyFlags()...)

	return &cli.Command{
		Name:   "validate",
		Usage:  "Validate a pipeline config and summarize its DAG",
		Flags:  flags,
		Action: validateAction,
	}
}

func validateAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for validate", 1)
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid config: %v", err), runtime.ExitCodeConfig)
	}

	space, err := partition.NewSpace(cfg.Partitions, nil)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid config: %v", err), runtime.ExitCodeConfig)
	}

	g, err := graph.Build(cfg, space)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid pipeline: %v", err), runtime.ExitCodeConfig)
	}

	resp := ValidateResponse{Valid: true}
	for _, node := range g.TopoOrder() {
		if _, err := check.CompileAll(node.Spec); err != nil {
			return cli.Exit(fmt.Sprintf("invalid pipeline: %v", err), runtime.ExitCodeConfig)
		}

		keys, err := space.Keyspace(node.Dimensions())
		if err != nil {
			return cli.Exit(fmt.Sprintf("invalid pipeline: %v", err), runtime.ExitCodeConfig)
		}

		resp.Assets = append(resp.Assets, ValidateAssetResponse{
			Name:       node.Name,
			Dimensions: node.Dimensions(),
			Partitions: len(keys),
			DependsOn:  node.Spec.DependsOn,
			Checks:     len(node.Spec.Checks),
		})
	}

	return r.Render(resp)
}

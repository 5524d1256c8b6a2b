// Package cmd provides CLI commands for the seam binary.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags for read-only commands.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}

	// TUIFlag enables Bubble Tea interactive mode.
	// Only valid for select read-only commands (status, pending).
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Enable interactive TUI mode (status, pending only)",
	}

	// ConfigFlag points at the declarative pipeline configuration.
	ConfigFlag = &cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Usage:    "Path to pipeline config file (YAML)",
		Required: true,
	}
)

// ReadOnlyFlags returns the shared flags for all read-only commands.
// Includes --tui so that unsupported commands can provide explicit error
// messages instead of generic "flag not defined" errors.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		NoColorFlag,
		TUIFlag,
	}
}

// StoreFlags returns the flags that select and configure the run store
// backend. Shared by run and the read-only store queries.
func StoreFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "store-backend",
			Usage: "Run store backend: memory, file, redis, or s3",
			Value: "file",
		},
		&cli.StringFlag{
			Name:  "store-path",
			Usage: "Run store path (file: directory, s3: bucket/prefix)",
			Value: ".seam",
		},
		&cli.StringFlag{
			Name:  "store-redis-url",
			Usage: "Redis connection URL for the redis backend",
		},
		&cli.StringFlag{
			Name:  "store-redis-prefix",
			Usage: "Key prefix for the redis backend",
		},
		&cli.StringFlag{
			Name:  "store-s3-region",
			Usage: "AWS region for the s3 backend (optional, uses default chain)",
		},
		&cli.StringFlag{
			Name:  "store-s3-endpoint",
			Usage: "Custom S3 endpoint URL for S3-compatible providers",
		},
		&cli.BoolFlag{
			Name:  "store-s3-path-style",
			Usage: "Force path-style S3 addressing",
		},
	}
}

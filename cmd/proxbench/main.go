// Package main is the proxbench CLI, a host application that exercises the
// bvh/geom core without the OBJ loader, renderer, arcball camera, or GUI
// overlay that a full interactive viewer would add around it.
package main

import (
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/latticemesh/proximity/internal/logging"
)

func main() {
	var logger *logging.Logger

	app := &cli.App{
		Name:  "proxbench",
		Usage: "build and query proximity meshes",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				logger = logging.NewDebugLogger("proxbench")
			} else {
				logger = logging.NewLogger("proxbench")
			}
			return nil
		},
		Commands: []*cli.Command{
			benchCommand(&logger),
			inspectCommand(&logger),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// runID mints a fresh correlation id and attaches it to logger for the
// remainder of a single subcommand invocation.
func runID(logger *logging.Logger) (*logging.Logger, uuid.UUID) {
	id := uuid.New()
	return &logging.Logger{SugaredLogger: logger.With("runID", id.String())}, id
}

func meshFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "divisions",
			Value: 20,
			Usage: "grid subdivisions per side of the benchmark mesh",
		},
		&cli.Float64Flag{
			Name:  "half-width",
			Value: 10,
			Usage: "half-width of the benchmark grid",
		},
		&cli.Float64Flag{
			Name:  "half-depth",
			Value: 10,
			Usage: "half-depth of the benchmark grid",
		},
		&cli.IntFlag{
			Name:  "max-tri-count",
			Value: 32,
			Usage: "leaf triangle-count hint passed to bvh.Build",
		},
	}
}

func requirePositive(c *cli.Context, name string) error {
	if c.Int(name) <= 0 {
		return errors.Errorf("%s must be positive, got %d", name, c.Int(name))
	}
	return nil
}

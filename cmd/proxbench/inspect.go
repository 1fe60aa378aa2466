package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/latticemesh/proximity/bvh"
	"github.com/latticemesh/proximity/geom"
	"github.com/latticemesh/proximity/internal/logging"
)

func inspectCommand(logger **logging.Logger) *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "build a procedural mesh and print the resulting tree shape",
		Flags: meshFlags(),
		Action: func(c *cli.Context) error {
			for _, name := range []string{"divisions", "max-tri-count"} {
				if err := requirePositive(c, name); err != nil {
					return err
				}
			}

			runLogger, id := runID(*logger)

			mesh := geom.GridMesh(c.Float64("half-width"), c.Float64("half-depth"), c.Int("divisions"))
			cm, err := bvh.Build(&mesh, c.Int("max-tri-count"), bvh.WithLogger(runLogger))
			if err != nil {
				return errors.Wrap(err, "building bvh")
			}

			stats := cm.Stats()
			fmt.Fprintf(c.App.Writer,
				"run %s: nodes=%d leaves=%d maxDepth=%d emptyLeaves=%d rootID=%d\n",
				id, stats.NodeCount, stats.LeafCount, stats.MaxDepth, stats.EmptyLeafCount, cm.RootID())
			return nil
		},
	}
}

package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/golang/geo/r3"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/latticemesh/proximity/bvh"
	"github.com/latticemesh/proximity/geom"
	"github.com/latticemesh/proximity/internal/logging"
)

func benchCommand(logger **logging.Logger) *cli.Command {
	flags := append(meshFlags(),
		&cli.IntFlag{
			Name:  "queries",
			Value: 1000,
			Usage: "number of randomized closest-point queries to run",
		},
		&cli.Float64Flag{
			Name:  "radius",
			Value: 5,
			Usage: "search radius passed to every query",
		},
		&cli.Int64Flag{
			Name:  "seed",
			Value: 1,
			Usage: "seed for the query-point RNG",
		},
	)

	return &cli.Command{
		Name:  "bench",
		Usage: "build a procedural mesh and report closest-point query latency percentiles",
		Flags: flags,
		Action: func(c *cli.Context) error {
			for _, name := range []string{"divisions", "max-tri-count", "queries"} {
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

			rng := rand.New(rand.NewSource(c.Int64("seed")))
			points := make([]r3.Vector, c.Int("queries"))
			halfW, halfD := c.Float64("half-width"), c.Float64("half-depth")
			for i := range points {
				points[i] = r3.Vector{
					X: (rng.Float64()*2 - 1) * halfW,
					Y: (rng.Float64()*2 - 1) * 2,
					Z: (rng.Float64()*2 - 1) * halfD,
				}
			}

			latencies := make([]float64, len(points))
			hitCount := 0
			radius := c.Float64("radius")
			for i, p := range points {
				start := time.Now()
				_, ok := bvh.ClosestPointOnMesh(cm, p, radius)
				latencies[i] = float64(time.Since(start).Microseconds())
				if ok {
					hitCount++
				}
			}

			p50, err := stats.Percentile(latencies, 50)
			if err != nil {
				return errors.Wrap(err, "computing p50")
			}
			p90, err := stats.Percentile(latencies, 90)
			if err != nil {
				return errors.Wrap(err, "computing p90")
			}
			p99, err := stats.Percentile(latencies, 99)
			if err != nil {
				return errors.Wrap(err, "computing p99")
			}

			runLogger.Infow("bench complete",
				"queries", len(points),
				"hits", hitCount,
				"p50Micros", p50,
				"p90Micros", p90,
				"p99Micros", p99,
			)
			fmt.Fprintf(c.App.Writer, "run %s: %d/%d hits, p50=%.2fus p90=%.2fus p99=%.2fus\n",
				id, hitCount, len(points), p50, p90, p99)
			return nil
		},
	}
}

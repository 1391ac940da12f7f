// Command qnetsim is the terminal front end of the simulator: batch runs,
// QASM round-tripping, probability histograms and an interactive circuit
// viewer.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"qnetsim/circuit"
	"qnetsim/qasm"
	"qnetsim/sim"
)

func main() {
	app := &cli.App{
		Name:  "qnetsim",
		Usage: "exact quantum circuit and network simulation",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "enable debug logging"},
			&cli.Int64Flag{Name: "seed", Usage: "measurement RNG seed (0 = time-based)"},
		},
		Commands: []*cli.Command{
			runCommand,
			qasmCommand,
			plotCommand,
			viewCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "qnetsim:", err)
		os.Exit(1)
	}
}

func newLogger(ctx *cli.Context) (*zap.Logger, error) {
	if ctx.Bool("verbose") {
		return zap.NewDevelopment()
	}
	return zap.NewNop(), nil
}

func newRand(ctx *cli.Context) *rand.Rand {
	seed := ctx.Int64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func loadCircuit(path string) (*circuit.Circuit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return qasm.Parse(string(data))
}

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "simulate a QASM file and print the outcome distribution",
	ArgsUsage: "<file.qasm>",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "shots", Value: 1, Usage: "number of measurement samples"},
		&cli.BoolFlag{Name: "unitary", Usage: "print the full circuit unitary"},
	},
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return cli.Exit("run: expected exactly one QASM file", 2)
		}
		c, err := loadCircuit(ctx.Args().First())
		if err != nil {
			return err
		}
		log, err := newLogger(ctx)
		if err != nil {
			return err
		}
		defer log.Sync()

		s := sim.New(
			sim.WithRand(newRand(ctx)),
			sim.WithUnitary(ctx.Bool("unitary")),
			sim.WithLogger(log),
		)
		res, err := s.Run(c)
		if err != nil {
			return err
		}

		fmt.Println(renderCircuit(c, -1))
		fmt.Println(renderProbabilities(res))
		if len(res.Measurements) > 0 {
			shots := ctx.Int("shots")
			if shots <= 1 {
				fmt.Println(renderMeasurements(res.Measurements))
			} else {
				counts := make(map[string]int)
				counts[outcomeKey(res)]++
				for i := 1; i < shots; i++ {
					r, err := s.Run(c)
					if err != nil {
						return err
					}
					counts[outcomeKey(r)]++
				}
				fmt.Println(renderCounts(counts, shots))
			}
		}
		if res.Unitary != nil {
			fmt.Println(renderUnitary(res.Unitary))
		}
		return nil
	},
}

var qasmCommand = &cli.Command{
	Name:      "qasm",
	Usage:     "parse a QASM file and re-emit it in canonical form",
	ArgsUsage: "<file.qasm>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "snapshot", Usage: "print the JSON snapshot instead of QASM"},
	},
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return cli.Exit("qasm: expected exactly one QASM file", 2)
		}
		c, err := loadCircuit(ctx.Args().First())
		if err != nil {
			return err
		}
		if ctx.Bool("snapshot") {
			data, err := c.MarshalJSON()
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}
		fmt.Print(qasm.Emit(c))
		return nil
	},
}

var plotCommand = &cli.Command{
	Name:      "plot",
	Usage:     "render the outcome distribution as a bar-chart image",
	ArgsUsage: "<file.qasm>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "probabilities.png", Usage: "output image path"},
	},
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return cli.Exit("plot: expected exactly one QASM file", 2)
		}
		c, err := loadCircuit(ctx.Args().First())
		if err != nil {
			return err
		}
		res, err := sim.New(sim.WithUnitary(false), sim.WithRand(newRand(ctx))).Run(c)
		if err != nil {
			return err
		}
		out := ctx.String("out")
		if err := writeHistogram(res, out); err != nil {
			return err
		}
		fmt.Println("wrote", out)
		return nil
	},
}

// outcomeKey flattens one run's sampled bits into a stable label.
func outcomeKey(res *sim.Result) string {
	keys := make([]string, 0, len(res.Measurements))
	for k := range res.Measurements {
		keys = append(keys, k)
	}
	return formatOutcome(keys, res.Measurements)
}

package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/profile"
	"gopkg.in/urfave/cli.v1"

	"github.com/ruffrey/ricur/learn"
)

/*
logger gets codec progress lines. --quiet swaps it for one that discards.
*/
var logger = log.New(os.Stderr, "ricur: ", log.LstdFlags)

/*
solverConfig holds the optimization params used by `bench`.
*/
var solverConfig = learn.DefaultConfig

func main() {
	app := cli.NewApp()
	app.Name = "ricur: matrix tools for recurrent neural network weights."
	app.Author = "Jeff H. Parrish"
	app.Email = "jeffhparrish@gmail.com"
	app.Copyright = "Copyright (c) 2017 Jeff H. Parrish"
	app.Version = "0.2.0"
	app.Usage = "inspect, compress and benchmark weight matrices"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "quiet",
			Usage: "Do not print codec progress lines",
		},
	}
	app.Before = func(c *cli.Context) error {
		if c.Bool("quiet") {
			logger.SetOutput(io.Discard)
		}
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:  "info",
			Usage: "Print the header and value statistics of a matrix file",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "in",
					Usage: "Path to the matrix `file`",
				},
			},
			Action: func(c *cli.Context) error {
				return info(c.String("in"))
			},
		},
		{
			Name:  "pack",
			Usage: "Re-save a matrix file with vector quantization (one byte per value)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "in",
					Usage: "Path to the source matrix `file`",
				},
				cli.StringFlag{
					Name:  "out",
					Usage: "`file` path for the compressed matrix",
				},
				cli.IntFlag{
					Name:  "codebook",
					Value: 256,
					Usage: "(optional) Codebook size: `int` between 1 and 256",
				},
			},
			Action: func(c *cli.Context) error {
				return pack(c.String("in"), c.String("out"), c.Int("codebook"))
			},
		},
		{
			Name:  "unpack",
			Usage: "Re-save a matrix file with raw float32 values",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "in",
					Usage: "Path to the source matrix `file`",
				},
				cli.StringFlag{
					Name:  "out",
					Usage: "`file` path for the uncompressed matrix",
				},
			},
			Action: func(c *cli.Context) error {
				return unpack(c.String("in"), c.String("out"))
			},
		},
		{
			Name:  "bench",
			Usage: "Time the matrix×vector kernels and the solver on a random matrix",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "rows",
					Value: 512,
					Usage: "Matrix height: `int`",
				},
				cli.IntFlag{
					Name:  "cols",
					Value: 512,
					Usage: "Matrix width: `int`",
				},
				cli.IntFlag{
					Name:  "iters",
					Value: 1000,
					Usage: "Number of `int` calls per kernel",
				},
				cli.Uint64Flag{
					Name:  "seed",
					Value: 1,
					Usage: "Random `seed` for the matrix and vectors",
				},
				cli.Float64Flag{
					Name:  "learn",
					Value: float64(learn.DefaultConfig.LearningRate),
					Usage: "(optional) Optimization param: `float32` base learning rate",
				},
				cli.Float64Flag{
					Name:  "gradmax",
					Value: float64(learn.DefaultConfig.GradientCutoff),
					Usage: "(optional) Gradient Clip: `float32` max value allowed for gradients before they are capped",
				},
				cli.BoolFlag{
					Name:  "constrate",
					Usage: "(optional) Use a constant learning rate instead of the adaptive one",
				},
			},
			Before: func(c *cli.Context) error {
				solverConfig.LearningRate = float32(c.Float64("learn"))
				solverConfig.GradientCutoff = float32(c.Float64("gradmax"))
				solverConfig.ConstantRate = c.Bool("constrate")

				return solverConfig.Validate()
			},
			Action: func(c *cli.Context) error {
				// cpu profiling via PERF environment flag
				if profileWhich := os.Getenv("PERF"); profileWhich != "" {
					if profileWhich == "mem" {
						defer profile.Start(profile.MemProfile).Stop()
					} else if profileWhich == "cpu" {
						defer profile.Start(profile.CPUProfile).Stop()
					}
				}
				return bench(c.Int("rows"), c.Int("cols"), c.Int("iters"), c.Uint64("seed"))
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command opeview renders a demo scene through one or more viewports of a
// viewer.Window.
//
// The bench command runs headless and prints frame statistics, view opens
// an OpenGL window through GLFW and play runs the same scene inside an
// ebiten game loop.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli"
)

const version = "0.1.0"

func init() {
	// GLFW must be driven from the main thread.
	runtime.LockOSThread()
}

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "opeview"
	app.Usage = "multi-viewport scene viewer"
	app.Version = version
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "log frame and context events",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "log everything, including per-frame diagnostics",
		},
	}
	app.Before = setupLogging
	app.Commands = []cli.Command{
		benchCommand(),
		viewCommand(),
		playCommand(),
	}
	return app
}

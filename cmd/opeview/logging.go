// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/gogpu/viewer"
)

func setupLogging(ctx *cli.Context) error {
	level := slog.LevelWarn
	switch {
	case ctx.GlobalBool("vv"):
		level = slog.LevelDebug
	case ctx.GlobalBool("v"):
		level = slog.LevelInfo
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	viewer.SetLogger(slog.New(h))
	return nil
}

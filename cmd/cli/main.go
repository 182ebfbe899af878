package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/riglab/internal/app"
	"github.com/vk/riglab/internal/cli"
	"github.com/vk/riglab/internal/ctxlog"
	"github.com/vk/riglab/internal/hcl_adapter"
	"github.com/vk/riglab/internal/scene"
)

// main is the entrypoint for the riglab application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical config errors, so we recover here to provide
	// a clean error to the caller.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked | %v", r)
		}
	}()

	loader := hcl_adapter.NewLoader()
	riglab := app.NewApp(outW, appConfig, loader)

	ctx := ctxlog.WithLogger(context.Background(), riglab.Logger())
	g, closeHost, err := riglab.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeHost(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	solvers, err := riglab.Run(ctx, g)
	if err != nil {
		return err
	}
	for _, s := range solvers {
		fmt.Fprintf(outW, "%s solver %q built under %s: %d drivers, %d controls\n",
			s.Classname, s.Name, scene.MustName(ctx, g, s.Root), len(s.Output.TM), len(s.Input.Anim))
	}
	return nil
}

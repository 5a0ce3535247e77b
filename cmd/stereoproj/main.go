package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/lukaszgryglicki/stereoproj/internal/otel"
	"github.com/lukaszgryglicki/stereoproj/internal/stereoproj"
)

func main() {
	os.Exit(run())
}

// run keeps the deferred profile and trace flushes ahead of os.Exit.
func run() int {
	stereoproj.Debug = stereoproj.Debug || os.Getenv("DEBUG") != ""
	profile := os.Getenv("PROFILE") != ""
	if profile {
		f, err := os.Create("cpu.out")
		if err != nil {
			panic(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			panic(err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	cfg, err := stereoproj.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := otel.Setup(ctx, "stereoproj")
	if err != nil {
		fmt.Printf("Error: tracing disabled: %v\n", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	if err := stereoproj.Run(ctx, cfg, os.Stdout); err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	return 0
}

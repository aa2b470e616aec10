package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	gpi "github.com/hdlbridge/gpi"
	"github.com/hdlbridge/gpi/backend"
	"github.com/hdlbridge/gpi/backend/simsched"
	"github.com/hdlbridge/gpi/callback"
	"github.com/hdlbridge/gpi/host"
	"github.com/hdlbridge/gpi/interp"
)

func main() {
	var (
		runFor    = flag.Uint64("time", 100, "Simulation time to run")
		period    = flag.Uint64("period", 10, "Clock period in time units")
		immediate = flag.Bool("immediate", false, "Fire value-change callbacks synchronously inside writes")
		deferred  = flag.Bool("deferred", false, "Use deferred callback cleanup")
		embed     = flag.Bool("embed", false, "Load the interpreter bridge and run its entry module")
		verbose   = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *period == 0 || *period%2 != 0 {
		fmt.Fprintln(os.Stderr, "Usage: gpisim [-time N] [-period N] [-immediate] [-deferred] [-embed]")
		fmt.Fprintln(os.Stderr, "       period must be non-zero and even")
		os.Exit(1)
	}

	if err := run(*runFor, *period, *immediate, *deferred, *embed, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(runFor, period uint64, immediate, deferred, embed, verbose bool) error {
	log := zap.NewNop()
	if verbose {
		var err error
		log, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		defer log.Sync()
	}

	// Build a small demo design: a toplevel with a clock, a counter and
	// an interrupt line.
	var opts []simsched.Option
	if immediate {
		opts = append(opts, simsched.WithImmediateReaction())
	}
	if deferred {
		opts = append(opts, simsched.WithPolicy(backend.DeferredDelete))
	}
	sim := simsched.New("gpisim", opts...)
	top := sim.AddModule(0, "top")
	sim.AddSignal(top, "clk", 1)
	count := sim.AddSignal(top, "count", 8)
	sim.AddSignal(top, "irq", 1)
	sim.AddParam(top, "NAME", "demo")

	g := gpi.New(sim, gpi.WithLogger(log))

	root, ok := g.RootHandle("")
	if !ok {
		return fmt.Errorf("no toplevel design unit")
	}
	fmt.Printf("Design: %s\n", root.Path())

	it, err := root.Iterate(backend.SelectChildren)
	if err != nil {
		return fmt.Errorf("iterate toplevel: %w", err)
	}
	for {
		child, ok := it.Next()
		if !ok {
			break
		}
		fmt.Printf("  %-8s %s\n", child.KindName(), child.Name())
	}

	if embed {
		cfg := host.FromEnv()
		bridge := interp.NewNative(cfg.InterpPath, log)
		h := host.New(g, bridge, host.WithLogger(log), host.WithConfig(cfg))
		if err := h.Start(flag.Args()); err != nil {
			// Fail-soft: the simulation still runs without the
			// interpreter.
			fmt.Fprintf(os.Stderr, "interpreter disabled: %v\n", err)
		}
	}

	clk, _ := root.ChildByName("clk")
	counter, _ := root.ChildByName("count")
	_ = sim.SetInt(count, backend.Deposit, 0)

	// Increment the counter on every rising clock edge. Each fire is
	// one-shot, so the callback re-registers itself.
	var onRising func(ctx any)
	onRising = func(ctx any) {
		v, _ := counter.Int()
		_ = counter.SetInt(backend.Deposit, v+1)
		if _, err := g.RegisterValueChangeCallback(clk, callback.Rising, onRising, nil); err != nil {
			log.Error("re-registration failed", zap.Error(err))
		}
	}
	if _, err := g.RegisterValueChangeCallback(clk, callback.Rising, onRising, nil); err != nil {
		return fmt.Errorf("register edge callback: %w", err)
	}

	drv := g.NewClock(clk)
	if err := drv.Start("0", period/2, 0); err != nil {
		return fmt.Errorf("start clock: %w", err)
	}

	sim.Run(runFor)
	drv.Stop()
	sim.Finish()

	v, _ := counter.Int()
	fmt.Printf("\nRan to t=%d: %d clock toggles, count=%d\n", sim.Now(), drv.Toggles(), v)
	return nil
}

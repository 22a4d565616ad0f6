package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/quanta-dev/quanta/pkg/quanta"
)

func benchCmd() *cobra.Command {
	var (
		sets      int
		observers int
		batched   bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure notification throughput",
		Long: `Run a quick cell notification benchmark.

Creates one cell with the given number of observers and measures
how fast Set calls propagate.

Examples:
  quanta bench
  quanta bench --sets=1000000 --observers=8
  quanta bench --batched`,
		Run: func(cmd *cobra.Command, args []string) {
			runBench(sets, observers, batched)
		},
	}

	cmd.Flags().IntVarP(&sets, "sets", "n", 100_000, "Number of Set calls")
	cmd.Flags().IntVarP(&observers, "observers", "o", 4, "Observers per cell")
	cmd.Flags().BoolVar(&batched, "batched", false, "Wrap all sets in one batch")

	return cmd
}

func runBench(sets, observers int, batched bool) {
	cell := quanta.NewCell(0, quanta.WithName("bench"))
	defer cell.Dispose()

	var delivered int
	for i := 0; i < observers; i++ {
		cell.Watch(func(int) { delivered++ })
	}

	run := func() {
		for i := 0; i < sets; i++ {
			cell.Set(i)
		}
	}

	start := time.Now()
	if batched {
		quanta.Batch(run)
	} else {
		run()
	}
	elapsed := time.Since(start)

	opsPerSec := float64(sets) / elapsed.Seconds()
	success("%d sets × %d observers in %s", sets, observers, elapsed.Round(time.Millisecond))
	info("%.0f sets/sec", opsPerSec)
	info("%d observer invocations", delivered)
}

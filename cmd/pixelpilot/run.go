package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/pixelpilot/pkg/adapters/redis"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [graph-file]",
	Short: "Run a graph at the configured tick rate",
	Long: `Loads a graph document and evaluates it until interrupted.
With --once a single tick runs and its report is printed.
With --lock the engine first takes a Redis lock so that only one engine drives this desktop.
The lock is renewed while the engine runs; if it is lost the engine stops.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		once, _ := cmd.Flags().GetBool("once")
		useLock, _ := cmd.Flags().GetBool("lock")
		lockKey, _ := cmd.Flags().GetString("lock-key")
		fromLibrary, _ := cmd.Flags().GetString("library")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, "")
		if err != nil {
			return err
		}
		defer a.Close()

		switch {
		case fromLibrary != "":
			err = a.loadGraph(ctx, fromLibrary, true)
		case len(args) == 1:
			err = a.loadGraph(ctx, args[0], false)
		default:
			err = errors.New("a graph file or --library name is required")
		}
		if err != nil {
			return err
		}

		var lost <-chan struct{}
		if useLock {
			client := a.client
			if client == nil {
				client = redisClient(cfg)
				defer client.Close()
			}
			locker := redis.NewLocker(client, cfg.Redis.Prefix)
			logger.Info("waiting for desktop lock", "key", lockKey)
			lease, err := locker.Hold(ctx, lockKey, cfg.Redis.LockTTL)
			if err != nil {
				return err
			}
			defer func() {
				if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
					logger.Warn("lock release failed", "key", lockKey, "error", err)
				}
			}()
			lost = lease.Lost()
			defer func() {
				if err := lease.Err(); err != nil {
					logger.Error("desktop lock lost", "key", lockKey, "error", err)
				}
			}()
		}

		if once {
			rep, err := a.engine.Step(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("tick %d: %d passes (converged=%t) in %s\n", rep.Tick, rep.Passes, rep.Converged, rep.Duration)
			fmt.Printf("rules fired: %v\n", rep.RulesFired)
			fmt.Printf("outputs fired: %v\n", rep.Fired)
			for _, f := range rep.Faults {
				fmt.Printf("fault %s: %v\n", f.NodeID, f.Err)
			}
			return nil
		}

		banner()
		if err := a.engine.Start(ctx); err != nil {
			return err
		}
		var runErr error
		select {
		case <-ctx.Done():
		case <-lost:
			runErr = fmt.Errorf("stopping engine: %w", redis.ErrLockLost)
		}
		if err := a.engine.Stop(); err != nil {
			return err
		}
		st := a.engine.Status()
		fmt.Printf("\nStopped after %d ticks (%d overruns)\n", st.Ticks, st.Overruns)
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("once", false, "Run a single tick and print its report")
	runCmd.Flags().Bool("lock", false, "Hold a Redis lock while running")
	runCmd.Flags().String("lock-key", "desktop", "Lock name used with --lock")
	runCmd.Flags().String("library", "", "Load the named graph from the library instead of a file")
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"welshStreet/internal/config"
	"welshStreet/internal/deployment"
	"welshStreet/internal/simulation"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the scripted scenarios on throwaway deployments",
		Long:  fmt.Sprintf("Run the scripted scenarios on throwaway deployments. Persisted state is not touched.\nScenarios: %v", simulation.Names()),
		RunE:  runSimulate,
	}
	cmd.Flags().StringSlice("scenario", nil, "scenarios to run, all when empty")
	return cmd
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	owner, err := cfg.OwnerAddress()
	if err != nil {
		return fmt.Errorf("owner: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcomes, err := simulation.Run(ctx, deployment.Config{
		Owner:       owner,
		FeeBps:      cfg.FeeBps,
		TaxShareBps: cfg.TaxShareBps,
		WelshSupply: cfg.WelshSupply,
		Decimals:    cfg.Decimals,
	}, cfg.Scenarios, logger)
	if err != nil {
		return err
	}
	if err := printJSON(cmd.OutOrStdout(), outcomes); err != nil {
		return err
	}
	for _, outcome := range outcomes {
		if !outcome.Passed {
			return fmt.Errorf("scenario %s failed", outcome.Name)
		}
	}
	return nil
}

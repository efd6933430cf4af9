package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/noah-isme/turmas-api/internal/config"
	"github.com/noah-isme/turmas-api/internal/export"
	"github.com/noah-isme/turmas-api/internal/kvstore"
	"github.com/noah-isme/turmas-api/internal/logger"
	"github.com/noah-isme/turmas-api/internal/repository"
	"github.com/noah-isme/turmas-api/internal/service"
)

const commandTimeout = 2 * time.Minute

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "turmactl",
		Short:         "Operate the turmas data store",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newSeedCommand(), newResetCommand(), newExportCommand())
	return root
}

type environment struct {
	cfg   config.Config
	log   zerolog.Logger
	kv    kvstore.Store
	store *repository.Store
}

func openEnvironment(ctx context.Context) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	kv, err := kvstore.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return &environment{cfg: cfg, log: log, kv: kv, store: repository.NewStore(kv, log)}, nil
}

func (e *environment) Close() {
	if err := e.kv.Close(); err != nil {
		e.log.Warn().Err(err).Msg("closing storage failed")
	}
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo accounts when no user exists",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			env, err := openEnvironment(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			report, err := service.NewSeedService(env.store, env.cfg.BcryptCost, env.log).EnsureSeedData(ctx)
			if err != nil {
				return err
			}
			if report.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "users already present, nothing seeded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users\n", report.Users)
			return nil
		},
	}
}

func newResetCommand() *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all data and load the demo data set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirmed {
				return fmt.Errorf("reset erases every record; pass --yes to continue")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			env, err := openEnvironment(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			report, err := service.NewSeedService(env.store, env.cfg.BcryptCost, env.log).ResetDemoData(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset done: %d users, %d classes, %d enrollments\n",
				report.Users, report.Classes, report.Enrollments)
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm erasing all data")
	return cmd
}

func newExportCommand() *cobra.Command {
	var (
		classID string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a class report spreadsheet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			env, err := openEnvironment(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			report, err := export.BuildClassReport(ctx, env.store, classID)
			if err != nil {
				return err
			}
			if out == "" {
				out = export.Filename(report.Class)
			}

			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer file.Close()

			if _, err := report.WriteTo(file); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&classID, "class", "", "class id")
	cmd.Flags().StringVar(&out, "out", "", "output file (defaults to a name derived from the class)")
	_ = cmd.MarkFlagRequired("class")
	return cmd
}

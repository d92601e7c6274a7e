package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/code19m/errx"
	"github.com/spf13/cobra"

	"github.com/rise-and-shine/entityrepo/backend"
	"github.com/rise-and-shine/entityrepo/cfgloader"
	"github.com/rise-and-shine/entityrepo/fixtures"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "repoctl",
		Short:         "Operate the entity stores",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "config/repoctl.yaml", "path of the configuration file")
	root.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", []string{".env"},
		"dotenv files read before ${VAR} references in the configuration are expanded")

	root.AddCommand(
		newConfigCmd(a),
		newSeedCmd(a),
		newPurgeCmd(a),
		newRetentionCmd(a),
	)
	return root
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets hidden",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), cfgloader.Describe(a.cfg))
			return err
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the entities described in a YAML fixture file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return errx.Wrap(err, errx.WithDetails(errx.D{"file": file}))
			}
			defer f.Close()

			return a.withStore(cmd.Context(), "seed", func(ctx context.Context, s *backend.Set) error {
				registry := s.Fixtures()
				loaded, err := fixtures.Load(ctx, registry, f)
				for _, kind := range registry.Kinds() {
					if n, ok := loaded[kind]; ok {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", kind, n)
					}
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "fixture file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newPurgeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-environment <environment-id>",
		Short: "Remove everything that belongs to an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), "purge-environment", func(ctx context.Context, s *backend.Set) error {
				report, err := s.PurgeEnvironment(ctx, args[0])
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "api keys: %d\n", len(report.APIKeys))
				fmt.Fprintf(out, "subscriptions: %d\n", len(report.Subscriptions))
				fmt.Fprintf(out, "plans: %d\n", len(report.Plans))
				fmt.Fprintf(out, "events: %d\n", len(report.Events))
				fmt.Fprintf(out, "pages: %d\n", len(report.Pages))
				fmt.Fprintf(out, "audits: %d\n", len(report.Audits))
				return err
			})
		},
	}
}

func newRetentionCmd(a *app) *cobra.Command {
	var (
		environmentID string
		maxAge        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "retention",
		Short: "Remove the audit entries of an environment older than --max-age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if maxAge <= 0 {
				return errx.New("--max-age must be positive", errx.WithType(errx.T_Validation))
			}
			return a.withStore(cmd.Context(), "retention", func(ctx context.Context, s *backend.Set) error {
				removed, err := s.ApplyAuditRetention(ctx, environmentID, maxAge)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "audits: %d\n", len(removed))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&environmentID, "environment", "", "environment id")
	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "age above which entries are removed, e.g. 720h")
	_ = cmd.MarkFlagRequired("environment")
	_ = cmd.MarkFlagRequired("max-age")
	return cmd
}

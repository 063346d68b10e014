/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/friendsincode/cromwell_cli/internal/cloud"
	"github.com/friendsincode/cromwell_cli/internal/config"
	"github.com/friendsincode/cromwell_cli/internal/identity"
	"github.com/friendsincode/cromwell_cli/internal/logging"
	"github.com/friendsincode/cromwell_cli/internal/version"
)

type app struct {
	cfg    config.Config
	logger zerolog.Logger
	out    io.Writer
}

// identityFactory builds the STS client on demand; replaced in tests.
var identityFactory = stsIdentity

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	rootCmd := &cobra.Command{
		Use:           "identitycli",
		Short:         "Cloud identity command scaffold",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			a.logger = logging.Setup(a.cfg.Verbosity)
			logging.Announce(a.logger, a.cfg.Profile)
			return nil
		},
	}

	a.cfg = *config.Default()
	rootCmd.PersistentFlags().CountVarP(&a.cfg.Verbosity, "verbose", "v", "Verbosity (cumulative)")
	rootCmd.PersistentFlags().StringVar(&a.cfg.Profile, "profile", config.DefaultProfile, "AWS CLI Profile")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "foo",
			Short: "Foo method",
			RunE: func(cmd *cobra.Command, args []string) error {
				return nil
			},
		},
		newBarCmd(a),
		&cobra.Command{
			Use:   "get-caller-identity",
			Short: "Display AWS account number",
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := identityFactory(cmd.Context(), a)
				if err != nil {
					return err
				}
				account, err := client.Account(cmd.Context())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(a.out, account)
				return err
			},
		},
	)
	return rootCmd
}

func newBarCmd(a *app) *cobra.Command {
	var someParam string
	cmd := &cobra.Command{
		Use:   "bar",
		Short: "Bar method",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.logger.Info().Str("someparam", someParam).Msgf("bar(%s)", someParam)
			return nil
		},
	}
	cmd.Flags().StringVar(&someParam, "someparam", "", "Function with a parameter (required)")
	_ = cmd.MarkFlagRequired("someparam")
	return cmd
}

func stsIdentity(ctx context.Context, a *app) (*identity.Client, error) {
	awsCfg, err := cloud.LoadAWSConfig(ctx, cloud.Options{Profile: a.cfg.Profile}, a.logger)
	if err != nil {
		return nil, err
	}
	return identity.NewClient(awsCfg, a.logger), nil
}

func main() {
	if err := newRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/friendsincode/cromwell_cli/internal/cromwell"
)

// now is replaced in tests.
var now = time.Now

func newQueryCmd(a *app) *cobra.Command {
	var host string
	var days int

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query host for all workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 {
				return fmt.Errorf("--days must not be negative")
			}
			client, err := a.cromwellClient(host)
			if err != nil {
				return err
			}
			resp, err := client.Query(cmd.Context(), days, now())
			if err != nil {
				return err
			}
			return cromwell.Print(a.out, resp)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "DNS name or IP of Cromwell host (required)")
	cmd.Flags().IntVar(&days, "days", 1, "Range of days in past to include")
	_ = cmd.MarkFlagRequired("host")
	return cmd
}

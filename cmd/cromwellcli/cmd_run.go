/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/friendsincode/cromwell_cli/internal/cromwell"
)

func newRunCmd(a *app) *cobra.Command {
	var host, source, inputs string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run given source WDL file with inputs JSON file",
		Long: `Submits a single workflow. The inputs file is read and sent as text, the same
way run_bucket sends rendered inputs, even when the file is empty. Without
--inputs the workflowInputs field is left out of the request.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var contents []byte
			if inputs != "" {
				data, err := os.ReadFile(inputs)
				if err != nil {
					return fmt.Errorf("read inputs file: %w", err)
				}
				contents = data
			}

			client, err := a.cromwellClient(host)
			if err != nil {
				return err
			}

			var resp *cromwell.Response
			if inputs != "" {
				resp, err = client.Submit(cmd.Context(), source, string(contents))
			} else {
				resp, err = client.SubmitSource(cmd.Context(), source)
			}
			if err != nil {
				return err
			}
			return cromwell.Print(a.out, resp)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "DNS name or IP of Cromwell host (required)")
	cmd.Flags().StringVar(&source, "source", "", "WDL input file (required)")
	cmd.Flags().StringVar(&inputs, "inputs", "", "JSON inputs file")
	_ = cmd.MarkFlagRequired("host")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

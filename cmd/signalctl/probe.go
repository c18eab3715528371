package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/okian/sugarsignal/internal/probe"
)

func newProbeCmd(c *cli) *cobra.Command {
	cfg := probe.Config{}
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Verify a running service with concurrent generated requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := probe.Run(cmd.Context(), cfg, c.log())
			if report != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(report); encErr != nil {
					return errors.Join(err, encErr)
				}
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVarP(&cfg.BaseURL, "url", "u", "http://localhost:8000", "Base URL of the service")
	f.StringVar(&cfg.Path, "path", probe.DefaultPath, "Prediction endpoint path")
	f.IntVarP(&cfg.Requests, "requests", "n", probe.DefaultRequests, "Number of distinct inputs")
	f.IntVarP(&cfg.Workers, "workers", "w", probe.DefaultWorkers, "Concurrent workers")
	f.DurationVar(&cfg.Timeout, "timeout", probe.DefaultTimeout, "HTTP request timeout")
	f.Uint64Var(&cfg.Seed, "seed", 1, "Input generator seed")
	f.StringVarP(&cfg.OutputFile, "output", "o", "", "Write cases and answers to this JSON file")
	return cmd
}

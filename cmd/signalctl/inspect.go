package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newInspectCmd(c *cli) *cobra.Command {
	var modelPath, checksum string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Load a model artifact and print its description",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.loadService(cmd.Context(), modelPath, checksum)
			if err != nil {
				return err
			}
			defer svc.Stop()

			info, err := svc.ModelInfo()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		},
	}
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Model path or URI (default: configured model_path)")
	cmd.Flags().StringVar(&checksum, "checksum", "", "Expected blake3-256 hex digest")
	return cmd
}

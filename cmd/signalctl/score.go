package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/sugarsignal/internal/domain/model"
)

func newScoreCmd(c *cli) *cobra.Command {
	var modelPath, input string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Run one prediction locally",
		Long: `Run one prediction locally against a model artifact.

--input takes a JSON object, @path to read it from a file, or - for stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := readInput(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}
			in, err := model.ParseInput(body)
			if err != nil {
				return err
			}

			svc, err := c.loadService(cmd.Context(), modelPath, "")
			if err != nil {
				return err
			}
			defer svc.Stop()

			resp, err := svc.Predict(cmd.Context(), in)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(resp)
		},
	}
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Model path or URI (default: configured model_path)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input JSON, @file or - for stdin")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func readInput(stdin io.Reader, arg string) ([]byte, error) {
	switch {
	case arg == "-":
		return io.ReadAll(stdin)
	case strings.HasPrefix(arg, "@"):
		data, err := os.ReadFile(strings.TrimPrefix(arg, "@"))
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		return data, nil
	}
	return []byte(arg), nil
}

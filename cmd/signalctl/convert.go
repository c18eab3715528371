package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/sugarsignal/internal/adapters/artifact"
	"github.com/okian/sugarsignal/internal/domain/classifier"
)

const artifactPermission = 0o644

func newConvertCmd(_ *cli) *cobra.Command {
	var in, out, format string
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Re-encode a model artifact as JSON or MessagePack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(in)
			if err != nil {
				return fmt.Errorf("read artifact: %w", err)
			}
			c, a, err := classifier.Load(data, classifier.WithFormat(classifier.FormatFromName(in)))
			if err != nil {
				return err
			}

			target := classifier.Format(format)
			if target == classifier.FormatAuto {
				target = classifier.FormatFromName(out)
			}
			if target == classifier.FormatAuto {
				return fmt.Errorf("cannot infer output format from %q; pass --format", out)
			}
			encoded, err := classifier.Encode(a, target)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, encoded, artifactPermission); err != nil {
				return fmt.Errorf("write artifact: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n", c.Kind(), target, artifact.Digest(encoded), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "Source artifact file")
	cmd.Flags().StringVar(&out, "out", "", "Destination artifact file")
	cmd.Flags().StringVar(&format, "format", "", "Output format: json or msgpack (default: from --out extension)")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

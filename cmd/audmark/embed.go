// SPDX-License-Identifier: EPL-2.0

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ik5/audmark/pipeline"
	"github.com/ik5/audmark/watermark"
	"github.com/spf13/cobra"
)

func newEmbedCmd(a *app) *cobra.Command {
	var in, out, method, id, format string

	cmd := &cobra.Command{
		Use:   "embed --in <file> --out <file>",
		Short: "Embed a watermark into an audio file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			audio, err := readAudio(in)
			if err != nil {
				return err
			}

			resp, err := a.pipeline().Embed(cmd.Context(), pipeline.EmbedRequest{
				Audio:        audio,
				WatermarkID:  id,
				Method:       method,
				OutputFormat: format,
			})
			if err != nil {
				return err
			}

			enc, err := pipeline.ParsePayload(resp.Audio)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, enc.Data, 0o644); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}

			resp.Audio = out
			return json.NewEncoder(cmd.OutOrStdout()).Encode(resp)
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "", "input audio file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output audio file")
	cmd.Flags().StringVarP(&method, "method", "m", string(watermark.MethodNeural), "backend: neural or external-codec")
	cmd.Flags().StringVar(&id, "id", watermark.DefaultID, "watermark id (external-codec only)")
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatWAV, "output format: wav or mp3")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

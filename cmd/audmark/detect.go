// SPDX-License-Identifier: EPL-2.0

package main

import (
	"encoding/json"

	"github.com/ik5/audmark/pipeline"
	"github.com/ik5/audmark/watermark"
	"github.com/spf13/cobra"
)

func newDetectCmd(a *app) *cobra.Command {
	var in, method string

	cmd := &cobra.Command{
		Use:   "detect --in <file>",
		Short: "Detect a watermark in an audio file",
		Long: `Detect prints the detection result as JSON. A clip without a watermark
is not an error: the result reports detected=false.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			audio, err := readAudio(in)
			if err != nil {
				return err
			}

			resp, err := a.pipeline().Detect(cmd.Context(), pipeline.DetectRequest{Audio: audio, Method: method})
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(resp)
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "", "input audio file")
	cmd.Flags().StringVarP(&method, "method", "m", string(watermark.MethodNeural), "backend: neural or external-codec")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

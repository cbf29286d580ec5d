// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/ik5/audmark"
	"github.com/ik5/audmark/internal/config"
	"github.com/ik5/audmark/pipeline"
	"github.com/spf13/cobra"
)

// app carries what PersistentPreRunE prepares for the subcommands.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger hclog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "audmark",
		Short: "Embed and detect audio watermarks",
		Long: `audmark embeds and detects audio watermarks with two backends:
a built-in neural-style detector that reports a confidence, and an external
codec tool (audiowmark) that embeds and extracts an exact id.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	root.AddCommand(newServeCmd(a), newEmbedCmd(a), newDetectCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	a.cfg = cfg
	a.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "audmark",
		Level:  cfg.LogLevel(),
		Output: cmd.ErrOrStderr(),
	})
	return nil
}

func (a *app) pipeline() *pipeline.Pipeline {
	return pipeline.NewFromConfig(a.cfg, a.logger)
}

// mimeForPath guesses the container from a file extension.
func mimeForPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	c, err := audmark.ParseContainer(ext)
	if err != nil {
		return ""
	}
	return c.MIME()
}

func readAudio(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return pipeline.DataURI(mimeForPath(path), data), nil
}

// SPDX-License-Identifier: EPL-2.0

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ik5/audmark/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p := a.pipeline()
			status := p.Registry().Status()
			a.logger.Info("backends", "status", status)

			return server.New(p, a.cfg.Server.MaxBodyBytes, a.logger).ListenAndServe(ctx, a.cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

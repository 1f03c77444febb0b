package main

import (
	"github.com/spf13/cobra"
	"github.com/zero-day-ai/graphqa/internal/app"
	"github.com/zero-day-ai/graphqa/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve conversations over HTTP",
	Long: `Start the multi-session HTTP API.

Each session keeps its own conversation state in the configured store
(memory or redis). Endpoints:

  POST   /v1/sessions
  POST   /v1/sessions/{id}/ask
  GET    /v1/sessions/{id}/history
  DELETE /v1/sessions/{id}
  GET    /healthz
  GET    /metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddress string

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "Listen address (default: server.address from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(cmd, a)

	srv, err := newServer(cmd, a)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(cmd.Context())
}

func newServer(cmd *cobra.Command, a *app.App) (*server.Server, error) {
	store, err := a.SessionStore(cmd.Context())
	if err != nil {
		return nil, err
	}

	sc := a.Config.Server
	if serveAddress != "" {
		sc.Address = serveAddress
	}
	return server.New(server.Config{
		Address:         sc.Address,
		ReadTimeout:     sc.ReadTimeout,
		WriteTimeout:    sc.WriteTimeout,
		ShutdownTimeout: sc.ShutdownTimeout,
		Store:           store,
		Resolver:        pipelineResolver(a),
		Health:          a.Health,
		Metrics:         a.Metrics,
		Logger:          a.Logger,
	})
}

func pipelineResolver(a *app.App) server.Resolver {
	return server.ResolverFunc(func(strategy string) (server.Runner, error) {
		p, err := a.Pipeline(strategy)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}

package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dialogdb/dialog/pkg/log"
	"github.com/dialogdb/dialog/pkg/metrics"
	rgrpc "github.com/dialogdb/dialog/pkg/router/grpc"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve this node's storage over gRPC, and expose /metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, backend, cfg, err := openReplica(cmd)
		if err != nil {
			return err
		}

		if cfg.MetricsAddress != "" {
			go func() {
				http.Handle("/metrics", metrics.Handler())
				if err := http.ListenAndServe(cfg.MetricsAddress, nil); err != nil {
					log.Logger.Error().Err(err).Msg("metrics server error")
				}
			}()
			fmt.Printf("metrics: http://%s/metrics\n", cfg.MetricsAddress)
		}

		if cfg.ListenAddress == "" {
			return fmt.Errorf("listenAddress must be set in config to serve")
		}

		listener, err := net.Listen("tcp", cfg.ListenAddress)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.ListenAddress, err)
		}

		handler := rgrpc.NewHandler(backend)
		srv := rgrpc.NewServer(handler)

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Serve(listener); err != nil {
				errCh <- err
			}
		}()
		fmt.Printf("router: grpc://%s\n", cfg.ListenAddress)
		fmt.Println("dialog node running. Press Ctrl+C to stop.")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			fmt.Println("\nshutting down...")
		case err := <-errCh:
			fmt.Fprintf(os.Stderr, "\nrouter server error: %v\n", err)
		}

		srv.GracefulStop()
		return nil
	},
}

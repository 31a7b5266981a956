// Package probe serves the HTTP API and a gRPC health service on one port.
// Orchestrators that speak grpc.health.v1 (Kubernetes gRPC probes, load
// balancers) hit the same address as browsers; cmux routes each connection by
// its first bytes.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/soheilhy/cmux"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ShutdownGrace is how long in-flight requests get to finish once ctx is
// cancelled.
const ShutdownGrace = 20 * time.Second

// Serve accepts connections on lis until ctx is cancelled, then shuts both
// servers down gracefully. gRPC connections go to a health server that
// reports SERVING for the whole process ("") until shutdown starts; every
// other connection goes to httpSrv. Serve closes lis before returning.
func Serve(ctx context.Context, lis net.Listener, httpSrv *http.Server, logger *slog.Logger) error {
	m := cmux.New(lis)
	// grpc-go clients wait for the server's SETTINGS frame before sending
	// headers, so the matcher has to write it.
	grpcL := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
	httpL := m.Match(cmux.Any())

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gs.Serve(grpcL); err != nil && gctx.Err() == nil {
			return fmt.Errorf("probe: grpc serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := httpSrv.Serve(httpL); err != nil && gctx.Err() == nil {
			return fmt.Errorf("probe: http serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := m.Serve(); err != nil && gctx.Err() == nil {
			return fmt.Errorf("probe: listener: %w", err)
		}
		return nil
	})

	// Shutdown runs when ctx is cancelled or any server fails.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("probe: shutting down", "grace", ShutdownGrace)
		hs.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownGrace)
		defer cancel()

		err := httpSrv.Shutdown(shutdownCtx)
		stopGRPC(shutdownCtx, gs)
		_ = lis.Close()
		if err != nil {
			return fmt.Errorf("probe: http shutdown: %w", err)
		}
		return nil
	})

	logger.Info("server listening", "addr", lis.Addr().String())
	return g.Wait()
}

// stopGRPC drains gRPC calls until ctx expires, then force-closes them.
// Health Watch streams never end on their own, so the hard stop is the
// common path when a prober is attached.
func stopGRPC(ctx context.Context, gs *grpc.Server) {
	done := make(chan struct{})
	go func() {
		gs.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		gs.Stop()
		<-done
	}
}

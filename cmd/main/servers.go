package main

import (
	"context"
	"fmt"
	"net"

	pb "synapse-console/src/grpc_control"
	"synapse-console/src/logger"
	"synapse-console/src/models"
	"synapse-console/src/server"

	"google.golang.org/grpc"
)

type runningServers struct {
	dashboard *server.DashboardServer
	grpc      *grpc.Server
}

// -----------------------------------------------------------------------------

// startServers orchestrates the startup of all server components
func startServers(config *models.MConfig, c *core, appLogger *logger.Logger) *runningServers {
	rs := &runningServers{
		dashboard: server.NewDashboardServer(config, c.controller, c.store, c.clock, appLogger),
		grpc:      grpc.NewServer(),
	}

	// 1. Dashboard REST + live push
	go func() {
		if err := rs.dashboard.Start(); err != nil {
			appLogger.Error("Dashboard server failed: %v", err)
		}
	}()

	// 2. gRPC Control Server
	addr := fmt.Sprintf("%s:%d", config.GrpcHost, config.GrpcPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		appLogger.Critical("failed to listen for gRPC: %v", err)
	}
	pb.RegisterConsoleControlServer(rs.grpc, pb.NewControlService(c.controller, appLogger))

	go func() {
		appLogger.Info("Starting gRPC Control Server on %s", addr)
		if err := rs.grpc.Serve(lis); err != nil {
			appLogger.Error("failed to serve gRPC: %v", err)
		}
	}()

	return rs
}

// -----------------------------------------------------------------------------

func (rs *runningServers) Stop(ctx context.Context) {
	rs.grpc.GracefulStop()
	rs.dashboard.Stop(ctx)
}

package grpc

import (
	"context"
	"net"

	"github.com/dstepanenko/tasktrack/internal/logging"
	"github.com/dstepanenko/tasktrack/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCServer hosts the public endpoint. The auth interceptor runs in front
// of every unary call; service handlers are registered by the transport
// collaborator and receive the principal via PrincipalFromContext.
type GRPCServer struct {
	address  string
	logger   logging.Logger
	identity *services.IdentityService
	users    *services.UserService
	tasks    *services.TaskService
	convs    *services.ConversationService
}

func NewGRPCServer(a string, l logging.Logger, is *services.IdentityService, us *services.UserService, ts *services.TaskService, cs *services.ConversationService) (*GRPCServer, error) {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		identity: is,
		users:    us,
		tasks:    ts,
		convs:    cs,
	}, nil
}

func (s *GRPCServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.authInterceptor))

	healthpb.RegisterHealthServer(srv, health.NewServer())

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

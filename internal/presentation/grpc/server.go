package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/AlifSrSE/css/pkg/auth"
	"github.com/AlifSrSE/css/pkg/tlsutil"
)

// HealthServiceName is the name reported by the gRPC health service.
const HealthServiceName = "credit-scoring"

// methodRoles lists who may call each method. Questions and
// ValidatePsychometric are open to any authenticated caller.
var methodRoles = map[string][]string{
	MethodSubmitApplication: {auth.RoleAdmin, auth.RoleLoanOfficer, auth.RoleService},
	MethodCalculateScore:    {auth.RoleAdmin, auth.RoleLoanOfficer, auth.RoleService},
	MethodBulkCalculate:     {auth.RoleAdmin, auth.RoleLoanOfficer},
	MethodGetScore:          {auth.RoleAdmin, auth.RoleLoanOfficer, auth.RoleAnalyst, auth.RoleService},
	MethodDashboardStats:    {auth.RoleAdmin, auth.RoleAnalyst},
	MethodGetPolicy:         {auth.RoleAdmin, auth.RoleAnalyst, auth.RoleLoanOfficer},
	MethodUpdateWeights:     {auth.RoleAdmin},
	MethodUpdateThresholds:  {auth.RoleAdmin},
}

// ServerOptions configures transport security and reflection.
type ServerOptions struct {
	CertFile string
	KeyFile  string

	// ClientCAFile enables mutual TLS against the given CA.
	ClientCAFile string
	Reflection   bool
}

// Server wraps the gRPC server with credit scoring handlers.
type Server struct {
	address    string
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
}

// NewServer creates a new gRPC server for the credit scoring service.
func NewServer(
	handler CreditScoringServiceServer,
	address string,
	jwtService *auth.JWTService,
	opts ServerOptions,
	logger *slog.Logger,
) (*Server, error) {
	// Add auth interceptor, skipping health check methods.
	authInterceptor := auth.UnaryAuthInterceptor(jwtService, []string{
		"/grpc.health.v1.Health/Check",
		"/grpc.health.v1.Health/Watch",
	})

	serverOpts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			loggingInterceptor(logger),
			authInterceptor,
			auth.MethodRoles(methodRoles),
		),
	}

	if opts.CertFile != "" && opts.KeyFile != "" {
		creds, err := tlsutil.ServerTLSConfig(opts.CertFile, opts.KeyFile, opts.ClientCAFile)
		if err != nil {
			return nil, fmt.Errorf("load TLS credentials: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(creds))
		logger.Info("gRPC TLS enabled", "cert", opts.CertFile, "mutual", opts.ClientCAFile != "")
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	grpcServer := grpc.NewServer(serverOpts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(HealthServiceName, healthpb.HealthCheckResponse_SERVING)

	RegisterCreditScoringServiceServer(grpcServer, handler)

	if opts.Reflection {
		reflection.Register(grpcServer)
	}

	return &Server{
		address:    address,
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger,
	}, nil
}

// Serve serves on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("gRPC server starting", slog.String("address", listener.Addr().String()))
	return s.grpcServer.Serve(listener)
}

// Start begins listening and serving gRPC requests.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(listener)
}

// Stop marks the service not serving and gracefully stops the server.
func (s *Server) Stop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		attrs := []any{"method", info.FullMethod, "duration", time.Since(start)}
		if err != nil {
			logger.WarnContext(ctx, "rpc failed", append(attrs, "error", err)...)
		} else {
			logger.DebugContext(ctx, "rpc handled", attrs...)
		}
		return resp, err
	}
}

package grpc

import (
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/auth"
)

// writeRoles admits staff allowed to change the loan book.
var writeRoles = []string{auth.RoleAdmin, auth.RoleManager, auth.RoleClerk}

// sweepRoles admits staff allowed to run portfolio-wide jobs.
var sweepRoles = []string{auth.RoleAdmin, auth.RoleManager}

// MethodRoles lists the roles required per method when auth is enabled.
// Read methods accept any authenticated caller.
func MethodRoles() map[string][]string {
	rules := map[string][]string{}
	for _, m := range []string{
		"CreateLoan", "UpdateLoan", "ActivateLoan", "MarkLoanDefault", "RefinanceLoan",
		"AddDocument", "VerifyDocument",
		"CreatePayment", "ProcessPayment", "CancelPayment", "ApplyLateFee",
	} {
		rules[FullMethod(m)] = writeRoles
	}
	for _, m := range []string{
		"DeleteLoan", "UpdateLoanStatuses", "UpdateLatePayments",
		"SendPaymentReminders", "GenerateMonthlyReport",
	} {
		rules[FullMethod(m)] = sweepRoles
	}
	return rules
}

// ServerOptions configures the optional parts of the gRPC server.
type ServerOptions struct {
	// JWT enables bearer-token auth when non-nil.
	JWT *auth.JWTService
	// Creds enables TLS when non-nil.
	Creds credentials.TransportCredentials
	// Reflection registers the reflection service.
	Reflection bool
}

// Server wraps a gRPC server with the loan handler registered.
type Server struct {
	gs     *grpc.Server
	health *health.Server
	logger *slog.Logger
}

// NewServer creates and configures the gRPC server.
func NewServer(handler LoanServiceServer, logger *slog.Logger, opts ServerOptions) *Server {
	interceptors := []grpc.UnaryServerInterceptor{UnaryTracingInterceptor()}
	if opts.JWT != nil {
		interceptors = append(interceptors,
			auth.UnaryAuthInterceptor(opts.JWT, []string{
				"/grpc.health.v1.Health/Check",
				"/grpc.health.v1.Health/Watch",
			}),
			auth.MethodRoles(MethodRoles()),
		)
	} else {
		logger.Warn("gRPC auth disabled, actors are taken from requests")
	}
	serverOpts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(interceptors...)}

	if opts.Creds != nil {
		serverOpts = append(serverOpts, grpc.Creds(opts.Creds))
		logger.Info("gRPC TLS enabled")
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	gs := grpc.NewServer(serverOpts...)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gs, healthSrv)
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	if opts.Reflection {
		reflection.Register(gs)
	}

	RegisterLoanServiceServer(gs, handler)

	return &Server{
		gs:     gs,
		health: healthSrv,
		logger: logger,
	}
}

// Serve starts the gRPC server on the specified address.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.ServeListener(lis)
}

// ServeListener serves on an existing listener.
func (s *Server) ServeListener(lis net.Listener) error {
	s.logger.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.gs.Serve(lis)
}

// GracefulStop marks the service not serving and stops the server gracefully.
func (s *Server) GracefulStop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.gs.GracefulStop()
}

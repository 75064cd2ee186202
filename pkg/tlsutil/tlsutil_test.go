package tlsutil

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestServerTLSConfig_Plaintext(t *testing.T) {
	creds, err := ServerTLSConfig(ServerFiles{})
	require.NoError(t, err)
	assert.Nil(t, creds)

	_, err = ServerTLSConfig(ServerFiles{CertFile: "cert.pem"})
	assert.Error(t, err)

	_, err = ServerTLSConfig(ServerFiles{ClientCAFile: "ca.pem"})
	assert.Error(t, err)
}

func TestClientTLSConfig_BadCA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(path, []byte("not a cert"), 0o600))

	_, err := ClientTLSConfig(path, "")
	assert.Error(t, err)
}

func TestDevCerts_Handshake(t *testing.T) {
	certs, err := GenerateDevCerts(t.TempDir(), "localhost", "127.0.0.1")
	require.NoError(t, err)

	serverCreds, err := ServerTLSConfig(ServerFiles{CertFile: certs.CertFile, KeyFile: certs.KeyFile})
	require.NoError(t, err)
	assert.Equal(t, "tls", serverCreds.Info().SecurityProtocol)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := grpc.NewServer(grpc.Creds(serverCreds))
	healthpb.RegisterHealthServer(srv, health.NewServer())
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	clientCreds, err := ClientTLSConfig(certs.CAFile, "localhost")
	require.NoError(t, err)
	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(clientCreds))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

// Package tlsutil loads the TLS credentials of the loan service's gRPC
// listener and its clients, and mints throwaway certificates for development.
package tlsutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc/credentials"
)

// ServerFiles names the PEM files of a TLS listener. ClientCAFile is
// optional; when set, callers must present a certificate signed by it.
type ServerFiles struct {
	CertFile     string
	KeyFile      string
	ClientCAFile string
}

// ServerTLSConfig loads server credentials. Cert and key both empty means
// plaintext and yields nil credentials.
func ServerTLSConfig(files ServerFiles) (credentials.TransportCredentials, error) {
	if files.CertFile == "" && files.KeyFile == "" {
		if files.ClientCAFile != "" {
			return nil, errors.New("tlsutil: client CA requires a server certificate")
		}
		return nil, nil
	}
	if files.CertFile == "" || files.KeyFile == "" {
		return nil, errors.New("tlsutil: cert and key files must be set together")
	}
	cert, err := tls.LoadX509KeyPair(files.CertFile, files.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: load server key pair: %w", err)
	}

	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if files.ClientCAFile != "" {
		pool, err := loadPool(files.ClientCAFile)
		if err != nil {
			return nil, err
		}
		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return credentials.NewTLS(cfg), nil
}

// ClientTLSConfig trusts only the CA in caFile, or the system roots when
// caFile is empty. serverName overrides the name checked against the
// server certificate.
func ClientTLSConfig(caFile, serverName string) (credentials.TransportCredentials, error) {
	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: serverName,
	}
	if caFile != "" {
		pool, err := loadPool(caFile)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}
	return credentials.NewTLS(cfg), nil
}

func loadPool(caFile string) (*x509.CertPool, error) {
	caPEM, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("tlsutil: no certificate in %s", caFile)
	}
	return pool, nil
}

// DevCerts are the files written by GenerateDevCerts.
type DevCerts struct {
	CAFile   string
	CertFile string
	KeyFile  string
}

// GenerateDevCerts writes a throwaway CA and a server certificate for hosts
// into outDir. Hosts that parse as IPs become IP SANs.
func GenerateDevCerts(outDir string, hosts ...string) (DevCerts, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return DevCerts{}, fmt.Errorf("tlsutil: mkdir %s: %w", outDir, err)
	}
	now := time.Now()

	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return DevCerts{}, fmt.Errorf("tlsutil: generate CA key: %w", err)
	}
	caTmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "loand dev CA"},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.AddDate(1, 0, 0),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTmpl, caTmpl, &caKey.PublicKey, caKey)
	if err != nil {
		return DevCerts{}, fmt.Errorf("tlsutil: create CA cert: %w", err)
	}
	caCert, err := x509.ParseCertificate(caDER)
	if err != nil {
		return DevCerts{}, fmt.Errorf("tlsutil: parse CA cert: %w", err)
	}

	srvKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return DevCerts{}, fmt.Errorf("tlsutil: generate server key: %w", err)
	}
	srvTmpl := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "loand"},
		NotBefore:    now.Add(-time.Minute),
		NotAfter:     now.AddDate(0, 3, 0),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			srvTmpl.IPAddresses = append(srvTmpl.IPAddresses, ip)
		} else {
			srvTmpl.DNSNames = append(srvTmpl.DNSNames, h)
		}
	}
	srvDER, err := x509.CreateCertificate(rand.Reader, srvTmpl, caCert, &srvKey.PublicKey, caKey)
	if err != nil {
		return DevCerts{}, fmt.Errorf("tlsutil: create server cert: %w", err)
	}
	srvKeyDER, err := x509.MarshalECPrivateKey(srvKey)
	if err != nil {
		return DevCerts{}, fmt.Errorf("tlsutil: marshal server key: %w", err)
	}

	out := DevCerts{
		CAFile:   filepath.Join(outDir, "ca.pem"),
		CertFile: filepath.Join(outDir, "server.pem"),
		KeyFile:  filepath.Join(outDir, "server-key.pem"),
	}
	for _, f := range []struct {
		path, kind string
		der        []byte
	}{
		{out.CAFile, "CERTIFICATE", caDER},
		{out.CertFile, "CERTIFICATE", srvDER},
		{out.KeyFile, "EC PRIVATE KEY", srvKeyDER},
	} {
		data := pem.EncodeToMemory(&pem.Block{Type: f.kind, Bytes: f.der})
		if err := os.WriteFile(f.path, data, 0o600); err != nil {
			return DevCerts{}, fmt.Errorf("tlsutil: write %s: %w", f.path, err)
		}
	}
	return out, nil
}

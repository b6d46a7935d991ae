// Package tlsutil loads transport credentials for the scoring gRPC API and
// issues a development PKI for it: a CA, a server certificate for the
// service hosts and optional client certificates for mutually authenticated
// callers such as loan origination systems.
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
	"regexp"
	"time"

	"google.golang.org/grpc/credentials"
)

// File names written by GenerateDevPKI.
const (
	CAFile        = "ca.pem"
	CAKeyFile     = "ca-key.pem"
	ServerFile    = "server.pem"
	ServerKeyFile = "server-key.pem"
)

// DefaultOrganization is stamped on development certificates.
const DefaultOrganization = "Credit Scoring Dev"

// DefaultValidity is the lifetime of development leaf certificates. The CA
// lives ten times as long.
const DefaultValidity = 90 * 24 * time.Hour

var clientNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// DefaultHosts are the server SANs used when none are given.
func DefaultHosts() []string {
	return []string{"localhost", "127.0.0.1", "credit-scoring"}
}

// DevPKIOptions selects what GenerateDevPKI issues.
type DevPKIOptions struct {
	// Hosts are DNS names or IPs for the server certificate.
	Hosts []string
	// Clients names client certificates to issue, written as <name>.pem
	// and <name>-key.pem. The name becomes the certificate CN.
	Clients      []string
	Organization string
	Validity     time.Duration
}

// DevPKI lists the files GenerateDevPKI wrote.
type DevPKI struct {
	CA      string
	Server  string
	Clients map[string]string
}

// GenerateDevPKI writes a CA, a server certificate and the requested client
// certificates to outDir. Keys are written with mode 0600.
func GenerateDevPKI(outDir string, opts DevPKIOptions) (DevPKI, error) {
	if len(opts.Hosts) == 0 {
		opts.Hosts = DefaultHosts()
	}
	if opts.Organization == "" {
		opts.Organization = DefaultOrganization
	}
	if opts.Validity <= 0 {
		opts.Validity = DefaultValidity
	}
	for _, c := range opts.Clients {
		if !clientNamePattern.MatchString(c) {
			return DevPKI{}, fmt.Errorf("tlsutil: invalid client name %q", c)
		}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return DevPKI{}, fmt.Errorf("tlsutil: mkdir %s: %w", outDir, err)
	}

	now := time.Now()
	ca := &x509.Certificate{
		Subject:               pkix.Name{Organization: []string{opts.Organization}, CommonName: opts.Organization + " CA"},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(10 * opts.Validity),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLenZero:        true,
	}
	caCert, caKey, err := issue(outDir, CAFile, CAKeyFile, ca, nil, nil)
	if err != nil {
		return DevPKI{}, err
	}

	server := leaf(opts, now, opts.Hosts[0], x509.ExtKeyUsageServerAuth)
	for _, h := range opts.Hosts {
		if ip := net.ParseIP(h); ip != nil {
			server.IPAddresses = append(server.IPAddresses, ip)
		} else {
			server.DNSNames = append(server.DNSNames, h)
		}
	}
	if _, _, err := issue(outDir, ServerFile, ServerKeyFile, server, caCert, caKey); err != nil {
		return DevPKI{}, err
	}

	out := DevPKI{
		CA:      filepath.Join(outDir, CAFile),
		Server:  filepath.Join(outDir, ServerFile),
		Clients: make(map[string]string, len(opts.Clients)),
	}
	for _, name := range opts.Clients {
		cert := leaf(opts, now, name, x509.ExtKeyUsageClientAuth)
		if _, _, err := issue(outDir, name+".pem", name+"-key.pem", cert, caCert, caKey); err != nil {
			return DevPKI{}, err
		}
		out.Clients[name] = filepath.Join(outDir, name+".pem")
	}
	return out, nil
}

func leaf(opts DevPKIOptions, now time.Time, cn string, usage x509.ExtKeyUsage) *x509.Certificate {
	return &x509.Certificate{
		Subject:     pkix.Name{Organization: []string{opts.Organization}, CommonName: cn},
		NotBefore:   now.Add(-time.Minute),
		NotAfter:    now.Add(opts.Validity),
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{usage},
	}
}

// issue signs template with parent (self-signed when parent is nil) and
// writes the certificate and key as PEM.
func issue(dir, certName, keyName string, template, parent *x509.Certificate, parentKey *ecdsa.PrivateKey) (*x509.Certificate, *ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("tlsutil: generate key for %s: %w", certName, err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 127))
	if err != nil {
		return nil, nil, fmt.Errorf("tlsutil: serial for %s: %w", certName, err)
	}
	template.SerialNumber = serial
	if parent == nil {
		parent, parentKey = template, key
	}

	der, err := x509.CreateCertificate(rand.Reader, template, parent, &key.PublicKey, parentKey)
	if err != nil {
		return nil, nil, fmt.Errorf("tlsutil: create %s: %w", certName, err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, nil, fmt.Errorf("tlsutil: marshal key for %s: %w", certName, err)
	}
	if err := writePEM(filepath.Join(dir, certName), "CERTIFICATE", der); err != nil {
		return nil, nil, err
	}
	if err := writePEM(filepath.Join(dir, keyName), "EC PRIVATE KEY", keyDER); err != nil {
		return nil, nil, err
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, nil, fmt.Errorf("tlsutil: parse %s: %w", certName, err)
	}
	return cert, key, nil
}

// ServerTLSConfig loads the server key pair. When clientCAFile is set,
// callers must present a certificate signed by it.
func ServerTLSConfig(certFile, keyFile, clientCAFile string) (credentials.TransportCredentials, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: load server key pair: %w", err)
	}
	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if clientCAFile != "" {
		pool, err := loadPool(clientCAFile)
		if err != nil {
			return nil, err
		}
		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return credentials.NewTLS(cfg), nil
}

// ClientTLSConfig builds credentials for calling the scoring API. caFile
// replaces the system roots when set; certFile and keyFile supply a client
// certificate for servers that require one.
func ClientTLSConfig(caFile, certFile, keyFile string) (credentials.TransportCredentials, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile != "" {
		pool, err := loadPool(caFile)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}
	if (certFile == "") != (keyFile == "") {
		return nil, errors.New("tlsutil: client certificate and key must be set together")
	}
	if certFile != "" {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return nil, fmt.Errorf("tlsutil: load client key pair: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
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
		return nil, fmt.Errorf("tlsutil: no CA certificate in %s", caFile)
	}
	return pool, nil
}

func writePEM(path, blockType string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("tlsutil: write %s: %w", path, err)
	}
	if err := pem.Encode(f, &pem.Block{Type: blockType, Bytes: data}); err != nil {
		_ = f.Close()
		return fmt.Errorf("tlsutil: encode %s: %w", path, err)
	}
	return f.Close()
}

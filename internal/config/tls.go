package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TLSFiles points at the PEM files for one outbound client connection.
type TLSFiles struct {
	Cert       string
	Key        string
	CACert     string
	ServerName string
}

// Enabled reports whether any TLS setting is present.
func (f TLSFiles) Enabled() bool {
	return f.Cert != "" || f.Key != "" || f.CACert != ""
}

func (f TLSFiles) check(prefix string) error {
	if (f.Cert == "") != (f.Key == "") {
		return fmt.Errorf("%s_CERT and %s_KEY must both be set", prefix, prefix)
	}
	return nil
}

// ClientConfig builds a *tls.Config for the named peer. It returns nil, nil
// when no TLS is configured. A CA without a client pair gives server-only
// verification.
func (f TLSFiles) ClientConfig(peer string) (*tls.Config, error) {
	if !f.Enabled() {
		return nil, nil
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if f.Cert != "" || f.Key != "" {
		cert, err := tls.LoadX509KeyPair(f.Cert, f.Key)
		if err != nil {
			return nil, fmt.Errorf("load %s client cert: %w", peer, err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if f.CACert != "" {
		caPEM, err := os.ReadFile(f.CACert)
		if err != nil {
			return nil, fmt.Errorf("read %s CA cert: %w", peer, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("failed to parse %s CA cert", peer)
		}
		tlsConfig.RootCAs = pool
	}

	if f.ServerName != "" {
		tlsConfig.ServerName = f.ServerName
	}

	return tlsConfig, nil
}

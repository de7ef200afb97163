//go:build !windows

package client

import (
	"crypto/x509"
	"os"
)

const defaultCABundlePath = "/etc/ssl/certs/ca-certificates.crt"

// systemCertPool builds the trust store used for TLS verification. On Unix,
// SSL_CERT_FILE overrides the default CA bundle path.
func systemCertPool() (*x509.CertPool, error) {
	path := os.Getenv("SSL_CERT_FILE")
	if path == "" {
		path = defaultCABundlePath
	}

	pem, err := os.ReadFile(path)
	if err != nil {
		// fall back to the platform pool (may itself be empty on minimal
		// systems, in which case TLS verification will fail loudly rather
		// than silently trusting nothing).
		return x509.SystemCertPool()
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return x509.SystemCertPool()
	}
	return pool, nil
}

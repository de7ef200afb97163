//go:build windows

package client

import "crypto/x509"

// systemCertPool uses the Windows ROOT system store unconditionally;
// x509.SystemCertPool() resolves to it on this platform.
func systemCertPool() (*x509.CertPool, error) {
	return x509.SystemCertPool()
}

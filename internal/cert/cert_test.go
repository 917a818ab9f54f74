package cert

import (
	"crypto/ecdsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Run("certificate for loopback", func(t *testing.T) {
		certPEM, keyPEM, err := Generate()
		require.NoError(t, err)

		cert := parseCertificate(t, certPEM)
		assert.IsType(t, &ecdsa.PublicKey{}, cert.PublicKey)
		assert.Contains(t, cert.DNSNames, "localhost")
		assert.True(t, containsIP(cert.IPAddresses, net.IPv6loopback))
		assert.True(t, cert.NotAfter.After(time.Now()))
		require.NoError(t, cert.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature))

		_, err = tls.X509KeyPair(certPEM, keyPEM)
		assert.NoError(t, err)
	})

	t.Run("certificate for hosts", func(t *testing.T) {
		certPEM, _, err := Generate("short.ly", "10.0.0.1")
		require.NoError(t, err)

		cert := parseCertificate(t, certPEM)
		assert.Equal(t, []string{"short.ly"}, cert.DNSNames)
		assert.True(t, containsIP(cert.IPAddresses, net.ParseIP("10.0.0.1")))
	})

	t.Run("serial numbers differ", func(t *testing.T) {
		first, _, err := Generate()
		require.NoError(t, err)
		second, _, err := Generate()
		require.NoError(t, err)

		assert.NotEqual(t,
			parseCertificate(t, first).SerialNumber,
			parseCertificate(t, second).SerialNumber)
	})
}

func TestNewTLSConfig(t *testing.T) {
	config, err := NewTLSConfig()

	require.NoError(t, err)
	assert.Len(t, config.Certificates, 1)
	assert.Equal(t, uint16(tls.VersionTLS12), config.MinVersion)
}

func parseCertificate(t *testing.T, certPEM []byte) *x509.Certificate {
	t.Helper()

	block, _ := pem.Decode(certPEM)
	require.NotNil(t, block)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)

	return cert
}

func containsIP(ips []net.IP, want net.IP) bool {
	for _, ip := range ips {
		if ip.Equal(want) {
			return true
		}
	}

	return false
}

package tlsroots

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/omfamily/internal/telemetry/metric"
)

func writeKeyPair(t *testing.T, certFile, keyFile string, serial int64) {
	t.Helper()

	certPEM, keyPEM := newKeyPair(t, serial)
	if err := os.WriteFile(certFile, certPEM, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0o600); err != nil {
		t.Fatal(err)
	}
}

func newKeyPair(t *testing.T, serial int64) (certPEM, keyPEM []byte) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(serial),
		Subject:      pkix.Name{CommonName: "omfamily-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		DNSNames:     []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return certPEM, keyPEM
}

func servingSerial(t *testing.T, r *Reloader) int64 {
	t.Helper()
	cert, _ := r.GetCertificate(nil)
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		t.Fatal(err)
	}
	return leaf.SerialNumber.Int64()
}

func paths(t *testing.T) (string, string) {
	dir := t.TempDir()
	return filepath.Join(dir, "server.crt"), filepath.Join(dir, "server.key")
}

func TestNewReloader(t *testing.T) {
	certFile, keyFile := paths(t)
	writeKeyPair(t, certFile, keyFile, 1)

	r, err := NewReloader(certFile, keyFile)
	if err != nil {
		t.Fatalf("NewReloader: %v", err)
	}
	defer r.Stop()

	cert, err := r.GetCertificate(nil)
	if err != nil || cert == nil {
		t.Fatalf("GetCertificate() = %v, %v", cert, err)
	}
	if cfg := r.TLSConfig(); cfg.GetCertificate == nil {
		t.Error("TLSConfig has no GetCertificate")
	}
}

func TestNewReloader_Errors(t *testing.T) {
	certFile, keyFile := paths(t)
	os.WriteFile(certFile, []byte("invalid"), 0o644)
	os.WriteFile(keyFile, []byte("invalid"), 0o600)

	tests := []struct {
		name string
		cert string
		key  string
	}{
		{"invalid pem", certFile, keyFile},
		{"missing files", "/nonexistent/cert.pem", "/nonexistent/key.pem"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewReloader(tt.cert, tt.key); err == nil {
				t.Error("NewReloader succeeded, want error")
			}
		})
	}
}

func TestReloader_Rotation(t *testing.T) {
	certFile, keyFile := paths(t)
	writeKeyPair(t, certFile, keyFile, 1)

	r, err := NewReloader(certFile, keyFile, WithDebounce(0))
	if err != nil {
		t.Fatal(err)
	}
	r.StartAsync()
	defer r.Stop()

	before, _ := r.GetCertificate(nil)
	writeKeyPair(t, certFile, keyFile, 2)

	deadline := time.Now().Add(5 * time.Second)
	for {
		after, _ := r.GetCertificate(nil)
		if !bytes.Equal(after.Certificate[0], before.Certificate[0]) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("certificate not reloaded after rotation")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestReloader_RotationCertThenKey(t *testing.T) {
	certFile, keyFile := paths(t)
	writeKeyPair(t, certFile, keyFile, 1)

	reg := metric.NewRegistry(metric.WithoutRuntimeCollectors())
	r, err := NewReloader(certFile, keyFile, WithDebounce(50*time.Millisecond), WithRegistry(reg))
	if err != nil {
		t.Fatal(err)
	}
	r.StartAsync()
	defer r.Stop()

	// The cert lands well before the key, so the first reload sees a
	// mismatched pair.
	certPEM, keyPEM := newKeyPair(t, 2)
	if err := os.WriteFile(certFile, certPEM, 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if got := servingSerial(t, r); got != 1 {
		t.Fatalf("serial after cert only = %d, want 1", got)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0o600); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for servingSerial(t, r) != 2 {
		if time.Now().After(deadline) {
			t.Fatal("certificate not reloaded after key was written")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestReloader_Stop(t *testing.T) {
	certFile, keyFile := paths(t)
	writeKeyPair(t, certFile, keyFile, 1)

	r, err := NewReloader(certFile, keyFile)
	if err != nil {
		t.Fatal(err)
	}
	r.StartAsync()
	if err := r.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
	if err := r.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func TestReloader_CountsReloads(t *testing.T) {
	certFile, keyFile := paths(t)
	writeKeyPair(t, certFile, keyFile, 1)

	reg := metric.NewRegistry(metric.WithoutRuntimeCollectors())
	r, err := NewReloader(certFile, keyFile, WithRegistry(reg))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Stop()

	os.WriteFile(keyFile, []byte("garbage"), 0o600)
	if err := r.reload(); err == nil {
		t.Fatal("reload of garbage key succeeded")
	}
	if cert, _ := r.GetCertificate(nil); cert == nil {
		t.Error("failed reload dropped the previous certificate")
	}

	var buf bytes.Buffer
	if err := reg.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`omfamily_tls_reloads_total{result="failure"} 1`,
		`omfamily_tls_reloads_total{result="success"} 1`,
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}

	writeKeyPair(t, certFile, keyFile, 2)
	if _, err := NewReloader(certFile, keyFile, WithRegistry(reg)); !errors.Is(err, metric.ErrDuplicateName) {
		t.Errorf("second reloader on one registry: err = %v, want ErrDuplicateName", err)
	}
}

package kafka

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

var compressionCodecs = map[string]kafkago.Compression{
	"none":   0,
	"gzip":   kafkago.Gzip,
	"snappy": kafkago.Snappy,
	"lz4":    kafkago.Lz4,
	"zstd":   kafkago.Zstd,
}

var saslMechanisms = map[string]func(user, pass string) (sasl.Mechanism, error){
	"PLAIN": func(user, pass string) (sasl.Mechanism, error) {
		return plain.Mechanism{Username: user, Password: pass}, nil
	},
	"SCRAM-SHA-256": func(user, pass string) (sasl.Mechanism, error) {
		return scram.Mechanism(scram.SHA256, user, pass)
	},
	"SCRAM-SHA-512": func(user, pass string) (sasl.Mechanism, error) {
		return scram.Mechanism(scram.SHA512, user, pass)
	},
}

// newTransport builds the writer transport with optional TLS and SASL.
func newTransport(cfg *Config) (*kafkago.Transport, error) {
	t := &kafkago.Transport{
		DialTimeout: duration(cfg.DialTimeout),
		IdleTimeout: duration(cfg.IdleTimeout),
		MetadataTTL: duration(cfg.MetadataTTL),
	}
	var err error
	if t.TLS, t.SASL, err = security(cfg); err != nil {
		return nil, err
	}
	return t, nil
}

// newDialer builds a dialer for health checks.
func newDialer(cfg *Config) (*kafkago.Dialer, error) {
	d := &kafkago.Dialer{
		Timeout:   duration(cfg.DialTimeout),
		DualStack: true,
	}
	var err error
	if d.TLS, d.SASLMechanism, err = security(cfg); err != nil {
		return nil, err
	}
	return d, nil
}

func security(cfg *Config) (*tls.Config, sasl.Mechanism, error) {
	var (
		tc  *tls.Config
		m   sasl.Mechanism
		err error
	)
	if cfg.EnableTLS {
		if tc, err = tlsConfig(cfg); err != nil {
			return nil, nil, fmt.Errorf("TLS config: %w", err)
		}
	}
	if cfg.EnableSASL {
		build, ok := saslMechanisms[cfg.SASLMechanism]
		if !ok {
			return nil, nil, fmt.Errorf("unsupported SASL mechanism: %s", cfg.SASLMechanism)
		}
		if m, err = build(cfg.Username, cfg.Password); err != nil {
			return nil, nil, fmt.Errorf("SASL config: %w", err)
		}
	}
	return tc, m, nil
}

func tlsConfig(cfg *Config) (*tls.Config, error) {
	tc := &tls.Config{
		InsecureSkipVerify: cfg.TLSSkipVerify, //nolint:gosec // opt-in for test clusters
		MinVersion:         tls.VersionTLS12,
	}
	if cfg.TLSCAFile != "" {
		pem, err := os.ReadFile(cfg.TLSCAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("parse CA certificate")
		}
		tc.RootCAs = pool
	}
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tc.Certificates = []tls.Certificate{cert}
	}
	return tc, nil
}

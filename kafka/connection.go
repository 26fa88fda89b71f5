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

// security resolves the optional TLS config and SASL mechanism.
func security(cfg *Config) (*tls.Config, sasl.Mechanism, error) {
	var (
		tc   *tls.Config
		mech sasl.Mechanism
		err  error
	)
	if cfg.EnableTLS {
		if tc, err = buildTLSConfig(cfg); err != nil {
			return nil, nil, fmt.Errorf("TLS config: %w", err)
		}
	}
	if cfg.EnableSASL {
		if mech, err = buildSASLMechanism(cfg); err != nil {
			return nil, nil, fmt.Errorf("SASL config: %w", err)
		}
	}
	return tc, mech, nil
}

// CreateTransport builds the producer transport.
func CreateTransport(cfg *Config) (*kafkago.Transport, error) {
	tc, mech, err := security(cfg)
	if err != nil {
		return nil, err
	}
	return &kafkago.Transport{
		DialTimeout: ParseDuration(cfg.DialTimeout),
		IdleTimeout: ParseDuration(cfg.IdleTimeout),
		MetadataTTL: ParseDuration(cfg.MetadataTTL),
		TLS:         tc,
		SASL:        mech,
	}, nil
}

// CreateDialer builds the consumer and health check dialer.
func CreateDialer(cfg *Config) (*kafkago.Dialer, error) {
	tc, mech, err := security(cfg)
	if err != nil {
		return nil, err
	}
	return &kafkago.Dialer{
		Timeout:       ParseDuration(cfg.DialTimeout),
		DualStack:     true,
		TLS:           tc,
		SASLMechanism: mech,
	}, nil
}

func buildTLSConfig(cfg *Config) (*tls.Config, error) {
	tc := &tls.Config{
		InsecureSkipVerify: cfg.TLSSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}

	if cfg.TLSCAFile != "" {
		caCert, err := os.ReadFile(cfg.TLSCAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
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

func buildSASLMechanism(cfg *Config) (sasl.Mechanism, error) {
	switch cfg.SASLMechanism {
	case "PLAIN":
		return plain.Mechanism{Username: cfg.Username, Password: cfg.Password}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism: %s", cfg.SASLMechanism)
	}
}

// ResolveCompression maps a compression name to a codec. Unknown names fall
// back to snappy.
func ResolveCompression(name string) kafkago.Compression {
	switch name {
	case "gzip":
		return kafkago.Gzip
	case "lz4":
		return kafkago.Lz4
	case "zstd":
		return kafkago.Zstd
	case "none":
		return 0
	default:
		return kafkago.Snappy
	}
}

package kafka

import (
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// Config holds the broker connection shared by the outbox relay producer and
// the application consumer.
type Config struct {
	Brokers       []string
	ConsumerGroup string

	TLS bool

	SASLEnabled bool
	// PLAIN (default), SCRAM-SHA-256 or SCRAM-SHA-512.
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
}

// Validate reports every problem with the connection settings.
func (c Config) Validate() error {
	var errs []error
	if len(c.Brokers) == 0 {
		errs = append(errs, errors.New("kafka: at least one broker is required"))
	}
	if c.ConsumerGroup == "" {
		errs = append(errs, errors.New("kafka: consumer group is required"))
	}
	if c.SASLEnabled {
		if c.SASLUsername == "" {
			errs = append(errs, errors.New("kafka: SASL username is required"))
		}
		if _, err := saslMechanism(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// tlsConfig returns the client TLS settings, or nil when TLS is off.
func tlsConfig(cfg Config) *tls.Config {
	if !cfg.TLS {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

// saslMechanism resolves the configured SASL mechanism. It returns nil when
// SASL is disabled.
func saslMechanism(cfg Config) (sasl.Mechanism, error) {
	if !cfg.SASLEnabled {
		return nil, nil
	}
	switch cfg.SASLMechanism {
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.SASLUsername, cfg.SASLPassword)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.SASLUsername, cfg.SASLPassword)
	case "PLAIN", "":
		return &plain.Mechanism{Username: cfg.SASLUsername, Password: cfg.SASLPassword}, nil
	default:
		return nil, fmt.Errorf("kafka: unsupported SASL mechanism %q", cfg.SASLMechanism)
	}
}

// newDialer builds the reader dialer. It is nil when neither TLS nor SASL is
// configured, which makes kafka-go use its default dialer.
func newDialer(cfg Config) (*kafkago.Dialer, error) {
	if !cfg.TLS && !cfg.SASLEnabled {
		return nil, nil
	}
	mechanism, err := saslMechanism(cfg)
	if err != nil {
		return nil, err
	}
	return &kafkago.Dialer{
		Timeout:       10 * time.Second,
		DualStack:     true,
		TLS:           tlsConfig(cfg),
		SASLMechanism: mechanism,
	}, nil
}

// newTransport builds the writer transport with the same TLS and SASL
// settings as newDialer.
func newTransport(cfg Config) (*kafkago.Transport, error) {
	mechanism, err := saslMechanism(cfg)
	if err != nil {
		return nil, err
	}
	return &kafkago.Transport{
		DialTimeout: 10 * time.Second,
		TLS:         tlsConfig(cfg),
		SASL:        mechanism,
	}, nil
}

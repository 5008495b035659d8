package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration so main stays lean.
type Server struct {
	Addr          string
	JWTSigningKey string

	RedisURL    string
	PostgresURL string

	KafkaBrokers []string
	AuditTopic   string

	CheckpointInterval time.Duration

	Token Token
}

// Token holds optional bootstrap parameters. When Name is set, the server
// initializes the ledger at startup with Owner as the owning address.
type Token struct {
	Name      string
	Symbol    string
	Decimals  uint8
	MaxSupply uint64
	Owner     string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("LEDGER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("LEDGER_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("LEDGER_AUDIT_TOPIC")
	if topic == "" {
		topic = "ledger.audit.events"
	}

	var brokers []string
	if raw := os.Getenv("LEDGER_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	interval := 5 * time.Minute
	if raw := os.Getenv("LEDGER_CHECKPOINT_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			interval = d
		}
	}

	return Server{
		Addr:               addr,
		JWTSigningKey:      jwtSigningKey,
		RedisURL:           os.Getenv("LEDGER_REDIS_URL"),
		PostgresURL:        os.Getenv("LEDGER_POSTGRES_URL"),
		KafkaBrokers:       brokers,
		AuditTopic:         topic,
		CheckpointInterval: interval,
		Token:              tokenFromEnv(),
	}
}

func tokenFromEnv() Token {
	decimals := uint8(0)
	if raw := os.Getenv("LEDGER_TOKEN_DECIMALS"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 8); err == nil {
			decimals = uint8(v)
		}
	}
	maxSupply := uint64(0)
	if raw := os.Getenv("LEDGER_TOKEN_MAX_SUPPLY"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 64); err == nil {
			maxSupply = v
		}
	}
	return Token{
		Name:      os.Getenv("LEDGER_TOKEN_NAME"),
		Symbol:    os.Getenv("LEDGER_TOKEN_SYMBOL"),
		Decimals:  decimals,
		MaxSupply: maxSupply,
		Owner:     os.Getenv("LEDGER_TOKEN_OWNER"),
	}
}

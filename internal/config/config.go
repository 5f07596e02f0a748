// Package config holds the environment-backed settings shared by the binaries.
package config

import (
	"log/slog"
	"time"

	"github.com/fastprodman/txledger/internal/services/ledger"
)

type LedgerConfig struct {
	LogLevel   slog.Level        `env:"LEDGER_LOG_LEVEL" envDefault:"info"`
	LockPolicy ledger.LockPolicy `env:"LEDGER_LOCK_POLICY" envDefault:"freeze"`
}

// PostgresConfig configures the snapshot export database. An empty DSN
// disables export.
type PostgresConfig struct {
	DSN             string        `env:"PG_DSN" envDefault:""`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"30m"`
}

func (c PostgresConfig) Enabled() bool {
	return c.DSN != ""
}

// KafkaConfig configures the rejection event publisher. No brokers disables it.
type KafkaConfig struct {
	Brokers []string `env:"LEDGER_KAFKA_BROKERS" envDefault:""`
	Topic   string   `env:"LEDGER_KAFKA_TOPIC" envDefault:"ledger.rejections"`
}

func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

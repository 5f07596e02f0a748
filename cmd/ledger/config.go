package main

import (
	"time"

	"github.com/fastprodman/txledger/internal/config"
)

type cliConfig struct {
	Ledger          config.LedgerConfig
	Postgres        config.PostgresConfig
	Kafka           config.KafkaConfig
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

package main

import (
	"time"

	"github.com/fastprodman/txledger/internal/config"
)

type apiConfig struct {
	Ledger          config.LedgerConfig
	Postgres        config.PostgresConfig
	Port            uint16        `env:"API_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

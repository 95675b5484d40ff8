package faucet

import "time"

const (
	Version = "v0.1.0"

	storeMemory = "memory"
	storeRedis  = "redis"

	sweepInterval = 5 * time.Minute
)

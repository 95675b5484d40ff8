package config

type Config struct {
	Enabled bool `mapstructure:"enabled"`

	// AllowMainnet must be set explicitly to dispense real STX.
	AllowMainnet bool `mapstructure:"allow_mainnet"`

	// PrivateKey is the hex-encoded secp256k1 key of the faucet wallet, optionally suffixed with `01` (compressed).
	PrivateKey string `mapstructure:"private_key"`

	// Address is informational, reported by the status endpoint. Derived from PrivateKey when empty.
	Address string `mapstructure:"address"`

	// AmountSTX is the amount dispensed per claim, in STX with up to 6 decimals (e.g. `1`, `0.5`).
	AmountSTX string `mapstructure:"amount_stx"`

	FeeMicroSTX       uint64 `mapstructure:"fee_microstx"`
	CooldownMinutes   int    `mapstructure:"cooldown_minutes"`
	IPCooldownMinutes int    `mapstructure:"ip_cooldown_minutes"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Store keeps the last claim times, `memory` or `redis`.
	Store string      `mapstructure:"store"`
	Redis RedisConfig `mapstructure:"redis"`
}

// RateLimitConfig is a token bucket shared by every claimer.
type RateLimitConfig struct {
	PerSecond float64 `mapstructure:"per_second"` // 0 disables the limit
	Burst     int     `mapstructure:"burst"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

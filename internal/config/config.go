package config

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common"
	faucetconfig "github.com/gaze-network/stamp-indexer/modules/faucet/config"
	stampconfig "github.com/gaze-network/stamp-indexer/modules/stamp/config"
	"github.com/gaze-network/stamp-indexer/pkg/logger"
	"github.com/gaze-network/stamp-indexer/pkg/logger/slogx"
	"github.com/gaze-network/stamp-indexer/pkg/middleware/requestcontext"
	"github.com/gaze-network/stamp-indexer/pkg/middleware/requestlogger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	configOnce sync.Once
	config     = &Config{}
)

type Config struct {
	EnableModules []string            `mapstructure:"enable_modules"`
	Logger        logger.Config       `mapstructure:"logger"`
	Network       common.Network      `mapstructure:"network"`
	HTTPServer    HTTPServerConfig    `mapstructure:"http_server"`
	StacksAPI     StacksAPIConfig     `mapstructure:"stacks_api"`
	Stamp         stampconfig.Config  `mapstructure:"stamp"`
	Faucet        faucetconfig.Config `mapstructure:"faucet"`
}

type HTTPServerConfig struct {
	Port      int                               `mapstructure:"port"`
	BodyLimit int                               `mapstructure:"body_limit"` // bytes
	Logger    requestlogger.Config              `mapstructure:"logger"`
	RequestIP requestcontext.WithClientIPConfig `mapstructure:"requestip"`
	CORS      CORSConfig                        `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowOrigins string `mapstructure:"allow_origins"`
}

type StacksAPIConfig struct {
	// BaseURL of the Stacks API. Defaults to the public Hiro API of the configured network.
	BaseURL string `mapstructure:"base_url"`
	Debug   bool   `mapstructure:"debug"`
}

// legacyEnvs are environment names accepted in addition to the derived `SECTION_KEY` form.
var legacyEnvs = map[string][]string{
	"http_server.port":             {"PORT"},
	"network":                      {"STACKS_NETWORK"},
	"stamp.contract_address":       {"CONTRACT_ADDRESS"},
	"stamp.contract_name":          {"CONTRACT_NAME"},
	"stamp.chainhook.auth_token":   {"CHAINHOOK_AUTH_TOKEN"},
	"stamp.chainhook.external_url": {"EXTERNAL_BASE_URL"},
	"stamp.chainhook.node_url":     {"CHAINHOOK_NODE_URL"},
	"stamp.chainhook.hiro_api_key": {"HIRO_API_KEY"},
	"stacks_api.base_url":          {"STACKS_API_BASE_URL"},
	"faucet.enabled":               {"FAUCET_ENABLED"},
	"faucet.allow_mainnet":         {"FAUCET_ALLOW_MAINNET"},
	"faucet.private_key":           {"FAUCET_PRIVATE_KEY"},
	"faucet.address":               {"FAUCET_ADDRESS"},
	"faucet.amount_stx":            {"FAUCET_AMOUNT_STX"},
	"faucet.cooldown_minutes":      {"FAUCET_COOLDOWN_MINUTES"},
	"faucet.ip_cooldown_minutes":   {"FAUCET_IP_COOLDOWN_MINUTES"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("enable_modules", []string{common.ModuleStamp.String(), common.ModuleFaucet.String()})
	v.SetDefault("logger.output", "text")
	v.SetDefault("logger.debug", false)
	v.SetDefault("logger.redact_keys", []string{})
	v.SetDefault("network", common.NetworkTestnet.String())

	v.SetDefault("http_server.port", 3000)
	v.SetDefault("http_server.body_limit", 5*1024*1024)
	v.SetDefault("http_server.logger.disable", false)
	v.SetDefault("http_server.logger.request_header", false)
	v.SetDefault("http_server.logger.request_query", false)
	v.SetDefault("http_server.logger.skip_paths", []string{"/health", "/api/health", "/metrics"})
	v.SetDefault("http_server.requestip.trusted_proxies_header", "")
	v.SetDefault("http_server.requestip.trusted_proxies_ip", []string{})
	v.SetDefault("http_server.requestip.reject_untrusted", false)
	v.SetDefault("http_server.cors.allow_origins", "*")

	v.SetDefault("stacks_api.base_url", "")
	v.SetDefault("stacks_api.debug", false)

	v.SetDefault("stamp.contract_address", "ST1G4ZDXED8XM2XJ4Q4GJ7F4PG4EJQ1KKXVPSAX13")
	v.SetDefault("stamp.contract_name", "bitcoin-stamp")
	v.SetDefault("stamp.ledger.deduplicate", false)
	v.SetDefault("stamp.chainhook.auth_token", "")
	v.SetDefault("stamp.chainhook.register", false)
	v.SetDefault("stamp.chainhook.provider", "local")
	v.SetDefault("stamp.chainhook.external_url", "http://localhost:3000")
	v.SetDefault("stamp.chainhook.node_url", "http://localhost:20456")
	v.SetDefault("stamp.chainhook.hiro_base_url", "") // network Stacks API when empty
	v.SetDefault("stamp.chainhook.hiro_api_key", "")

	v.SetDefault("faucet.enabled", true)
	v.SetDefault("faucet.allow_mainnet", false)
	v.SetDefault("faucet.private_key", "")
	v.SetDefault("faucet.address", "")
	v.SetDefault("faucet.amount_stx", "1")
	v.SetDefault("faucet.fee_microstx", 2000)
	v.SetDefault("faucet.cooldown_minutes", 1440)
	v.SetDefault("faucet.ip_cooldown_minutes", 0) // 0 follows faucet.cooldown_minutes
	v.SetDefault("faucet.rate_limit.per_second", 1)
	v.SetDefault("faucet.rate_limit.burst", 5)
	v.SetDefault("faucet.store", "memory")
	v.SetDefault("faucet.redis.addr", "localhost:6379")
	v.SetDefault("faucet.redis.username", "")
	v.SetDefault("faucet.redis.password", "")
	v.SetDefault("faucet.redis.db", 0)
	v.SetDefault("faucet.redis.key_prefix", "stamp-indexer:faucet")
}

// Parse loads the configuration from the given file (or `./config.yaml` when empty) and environment variables.
// It's safe to call multiple times, only the first call takes effect.
func Parse(configFile ...string) Config {
	ctx := logger.WithContext(context.Background(), slog.String("package", "config"))
	configOnce.Do(func() {
		setDefaults(viper.GetViper())

		if len(configFile) > 0 && configFile[0] != "" {
			viper.SetConfigFile(configFile[0])
		} else {
			viper.AddConfigPath("./")
			viper.SetConfigName("config")
		}

		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		for key, envs := range legacyEnvs {
			if err := viper.BindEnv(append([]string{key, strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, envs...)...); err != nil {
				logger.PanicContext(ctx, "failed to bind env", slogx.String("key", key), slogx.Error(err))
			}
		}

		if err := viper.ReadInConfig(); err != nil {
			var errNotfound viper.ConfigFileNotFoundError
			if errors.As(err, &errNotfound) {
				logger.WarnContext(ctx, "config file not found, use default value", slogx.Error(err))
			} else {
				logger.PanicContext(ctx, "invalid config file", slogx.Error(err))
			}
		}

		if err := viper.Unmarshal(&config); err != nil {
			logger.PanicContext(ctx, "failed to unmarshal config", slogx.Error(err))
		}
		logger.InfoContext(ctx, "loaded config from environment variables successfully")
	})
	return *config
}

// Load returns the parsed configuration. Parse must be called before.
func Load() Config {
	return Parse()
}

// BindPFlag binds a command line flag to a configuration key. A set flag takes precedence over every other source.
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Panic("Something went wrong, failed to bind flag for config", slog.String("package", "config"), slogx.Error(err))
	}
}

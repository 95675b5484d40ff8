package config

import "fmt"

type Config struct {
	ContractAddress string          `mapstructure:"contract_address"`
	ContractName    string          `mapstructure:"contract_name"`
	Ledger          LedgerConfig    `mapstructure:"ledger"`
	Chainhook       ChainhookConfig `mapstructure:"chainhook"`
}

// ContractId returns the fully qualified contract identifier, `<address>.<name>`.
func (c Config) ContractId() string {
	return fmt.Sprintf("%s.%s", c.ContractAddress, c.ContractName)
}

type LedgerConfig struct {
	// Deduplicate drops redelivered records keyed by (txId, kind). Disabled by default, every delivery is counted.
	Deduplicate bool `mapstructure:"deduplicate"`
}

type ChainhookConfig struct {
	// AuthToken is the shared secret webhook callers must present. Empty rejects every webhook.
	AuthToken string `mapstructure:"auth_token"`

	// Register upserts the predicates on start. Registration failures are logged, never fatal.
	Register bool `mapstructure:"register"`

	// Provider that delivers the webhooks, `local` (a self-hosted chainhook node) or `hiro` (hosted Chainhooks API).
	Provider string `mapstructure:"provider"`

	// ExternalURL is the public base URL of this service, predicates post to `<ExternalURL>/webhooks/<route>`.
	ExternalURL string `mapstructure:"external_url"`

	NodeURL     string `mapstructure:"node_url"`
	HiroBaseURL string `mapstructure:"hiro_base_url"`
	HiroAPIKey  string `mapstructure:"hiro_api_key"`
}

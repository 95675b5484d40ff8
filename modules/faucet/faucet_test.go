package faucet

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gaze-network/stamp-indexer/common"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/gaze-network/stamp-indexer/internal/config"
	faucetconfig "github.com/gaze-network/stamp-indexer/modules/faucet/config"
	"github.com/gaze-network/stamp-indexer/pkg/errorhandler"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		Network:   common.NetworkTestnet,
		StacksAPI: config.StacksAPIConfig{BaseURL: "http://localhost:3999"},
		Faucet: faucetconfig.Config{
			Enabled:         true,
			PrivateKey:      "edf9aee84d9b7abc145504dde6726c64f369d37ee34ded868fabd876c26570bc01",
			Address:         "ST1G4ZDXED8XM2XJ4Q4GJ7F4PG4EJQ1KKXVPSAX13",
			AmountSTX:       "0.5",
			CooldownMinutes: 30,
			Store:           "memory",
		},
	}
}

func newInjector(conf config.Config) (do.Injector, *fiber.App) {
	app := fiber.New(fiber.Config{ErrorHandler: errorhandler.NewHTTPErrorHandler()})
	injector := do.New()
	do.ProvideValue(injector, context.Background())
	do.ProvideValue(injector, conf)
	do.ProvideValue(injector, app)
	return injector, app
}

func TestNew(t *testing.T) {
	injector, app := newInjector(testConfig())
	w, err := New(injector)
	require.NoError(t, err)
	assert.Equal(t, "faucet", w.Name())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/faucet/status", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	// the configured address is reported even when it differs from the key's
	assert.JSONEq(t, `{
		"enabled": true,
		"network": "testnet",
		"address": "ST1G4ZDXED8XM2XJ4Q4GJ7F4PG4EJQ1KKXVPSAX13",
		"amountStx": "0.5",
		"cooldownMinutes": 30
	}`, string(body))
}

func TestNewInvalidConfig(t *testing.T) {
	test := func(name string, mutate func(conf *config.Config), target error) {
		t.Run(name, func(t *testing.T) {
			conf := testConfig()
			mutate(&conf)
			injector, _ := newInjector(conf)
			_, err := New(injector)
			require.Error(t, err)
			if target != nil {
				assert.ErrorIs(t, err, target)
			}
		})
	}

	test("unsupported_store", func(conf *config.Config) { conf.Faucet.Store = "etcd" }, errs.Unsupported)
	test("unsupported_network", func(conf *config.Config) { conf.Network = "regtest" }, errs.Unsupported)
	test("invalid_private_key", func(conf *config.Config) { conf.Faucet.PrivateKey = "abcd" }, errs.InvalidArgument)
}

func TestNewWithoutPrivateKey(t *testing.T) {
	conf := testConfig()
	conf.Faucet.PrivateKey = ""
	conf.Faucet.Address = ""

	injector, app := newInjector(conf)
	_, err := New(injector)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/faucet/claim", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

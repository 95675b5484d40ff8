package stamp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/gaze-network/stamp-indexer/internal/config"
	stampconfig "github.com/gaze-network/stamp-indexer/modules/stamp/config"
	"github.com/gaze-network/stamp-indexer/pkg/chainhookclient"
	"github.com/gaze-network/stamp-indexer/pkg/errorhandler"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		Network: common.NetworkTestnet,
		Stamp: stampconfig.Config{
			ContractAddress: "ST1G4ZDXED8XM2XJ4Q4GJ7F4PG4EJQ1KKXVPSAX13",
			ContractName:    "bitcoin-stamp",
			Chainhook: stampconfig.ChainhookConfig{
				AuthToken:   "s3cret",
				Provider:    "local",
				ExternalURL: "http://localhost:3000",
				NodeURL:     "http://localhost:20456",
			},
		},
	}
}

func TestHooks(t *testing.T) {
	got := hooks("bitcoin-stamp")
	assert.Equal(t, []chainhookclient.Hook{
		{Name: "bitcoin-stamp-paid-mint", Method: "mint", WebhookPath: "/webhooks/paid-mint"},
		{Name: "bitcoin-stamp-free-mint", Method: "free-mint", WebhookPath: "/webhooks/free-mint"},
		{Name: "bitcoin-stamp-owner-mint", Method: "owner-mint", WebhookPath: "/webhooks/owner-mint"},
		{Name: "bitcoin-stamp-transfer", Method: "transfer", WebhookPath: "/webhooks/transfer"},
		{Name: "bitcoin-stamp-burn", Method: "burn", WebhookPath: "/webhooks/burn"},
	}, got)
}

func TestNewRegistrar(t *testing.T) {
	ctx := context.Background()

	t.Run("local", func(t *testing.T) {
		registrar, err := newRegistrar(ctx, testConfig())
		require.NoError(t, err)
		assert.IsType(t, &chainhookclient.LocalClient{}, registrar)
	})

	t.Run("hiro", func(t *testing.T) {
		conf := testConfig()
		conf.Stamp.Chainhook.Provider = " Hiro "
		conf.Stamp.Chainhook.HiroAPIKey = "key"
		conf.Stamp.Chainhook.ExternalURL = "https://stamps.example.com"
		registrar, err := newRegistrar(ctx, conf)
		require.NoError(t, err)
		assert.IsType(t, &chainhookclient.HiroClient{}, registrar)
	})

	t.Run("hiro_without_api_key", func(t *testing.T) {
		conf := testConfig()
		conf.Stamp.Chainhook.Provider = "hiro"
		_, err := newRegistrar(ctx, conf)
		assert.ErrorIs(t, err, errs.InvalidArgument)
	})

	t.Run("unknown_provider", func(t *testing.T) {
		conf := testConfig()
		conf.Stamp.Chainhook.Provider = "carrier-pigeon"
		_, err := newRegistrar(ctx, conf)
		assert.ErrorIs(t, err, errs.Unsupported)
	})
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
	conf := testConfig()
	// an invalid registration setup is logged and skipped
	conf.Stamp.Chainhook.Register = true
	conf.Stamp.Chainhook.Provider = "carrier-pigeon"

	injector, app := newInjector(conf)
	w, err := New(injector)
	require.NoError(t, err)
	assert.Equal(t, "stamp", w.Name())

	payload := `{"apply": [{"block_identifier": {"index": 1}, "timestamp": 10, "transactions": [{
		"transaction_identifier": {"hash": "0xabc"},
		"metadata": {"sender": "ST1", "success": true, "result": "(ok u1)", "kind": {"type": "ContractCall", "data": {
			"contract_identifier": "` + conf.Stamp.ContractId() + `",
			"method": "burn",
			"args": ["u1"]
		}}}
	}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/burn", strings.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer s3cret")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success": true, "processed": 1}`, string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/stats", nil), -1)
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.JSONEq(t, `{
		"totalMints": 0, "paidMints": 0, "freeMints": 0, "ownerMints": 0,
		"totalTransfers": 0, "totalBurns": 1, "activeUsers": 1
	}`, string(body))
}

func TestNewMissingContract(t *testing.T) {
	conf := testConfig()
	conf.Stamp.ContractName = ""

	injector, _ := newInjector(conf)
	_, err := New(injector)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, errs.Unsupported))
}

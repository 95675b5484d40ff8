package stamp

import (
	"context"
	"net/url"
	"strings"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/gaze-network/stamp-indexer/internal/config"
	"github.com/gaze-network/stamp-indexer/modules/stamp/usecase"
	"github.com/gaze-network/stamp-indexer/pkg/chainhookclient"
	"github.com/gaze-network/stamp-indexer/pkg/logger"
	"github.com/gaze-network/stamp-indexer/pkg/logger/slogx"
	"github.com/samber/lo"
)

// hooks returns one hook per webhook route, named `<contract name>-<route>`.
func hooks(contractName string) []chainhookclient.Hook {
	return lo.Map(usecase.WebhookRoutes, func(route usecase.WebhookRoute, _ int) chainhookclient.Hook {
		return chainhookclient.Hook{
			Name:        contractName + "-" + route.String(),
			Method:      route.Method(),
			WebhookPath: webhookBasePath + route.Path(),
		}
	})
}

func newRegistrar(ctx context.Context, conf config.Config) (chainhookclient.Registrar, error) {
	chainhookConf := conf.Stamp.Chainhook
	target := chainhookclient.Target{
		ContractId:  conf.Stamp.ContractId(),
		Network:     conf.Network,
		ExternalURL: chainhookConf.ExternalURL,
		AuthToken:   chainhookConf.AuthToken,
	}

	provider := chainhookclient.Provider(strings.ToLower(strings.TrimSpace(chainhookConf.Provider)))
	switch provider {
	case chainhookclient.ProviderLocal:
		logger.InfoContext(ctx, "Registering predicates against local chainhook node", slogx.String("node", chainhookConf.NodeURL))
		client, err := chainhookclient.NewLocal(chainhookConf.NodeURL, target)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return client, nil
	case chainhookclient.ProviderHiro:
		if u, err := url.Parse(chainhookConf.ExternalURL); err == nil && lo.Contains([]string{"localhost", "127.0.0.1"}, u.Hostname()) {
			logger.WarnContext(ctx, "External URL is not publicly reachable, hosted chainhooks can't deliver webhooks to it",
				slogx.String("externalURL", chainhookConf.ExternalURL),
			)
		}
		baseURL := utils.Default(chainhookConf.HiroBaseURL, conf.Network.Params().APIBaseURL)
		logger.InfoContext(ctx, "Registering chainhooks via Hiro API", slogx.String("baseURL", baseURL))
		client, err := chainhookclient.NewHiro(baseURL, chainhookConf.HiroAPIKey, target)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return client, nil
	}
	return nil, errors.Wrapf(errs.Unsupported, "%q chainhook provider is not supported", chainhookConf.Provider)
}

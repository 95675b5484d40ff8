package stamp

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/core/worker"
	"github.com/gaze-network/stamp-indexer/internal/config"
	"github.com/gaze-network/stamp-indexer/modules/stamp/api"
	"github.com/gaze-network/stamp-indexer/modules/stamp/ledger"
	"github.com/gaze-network/stamp-indexer/modules/stamp/usecase"
	"github.com/gaze-network/stamp-indexer/pkg/logger"
	"github.com/gaze-network/stamp-indexer/pkg/logger/slogx"
	"github.com/gaze-network/stamp-indexer/pkg/middleware/authtoken"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do/v2"
)

func New(injector do.Injector) (worker.Worker, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)
	stampConf := conf.Stamp

	if stampConf.ContractAddress == "" || stampConf.ContractName == "" {
		return nil, errors.New("stamp contract address and name are required")
	}
	ctx = logger.WithContext(ctx, slogx.String("contract", stampConf.ContractId()))

	eventLedger := ledger.New(ledger.WithDeduplication(stampConf.Ledger.Deduplicate))
	stampUsecase := usecase.New(eventLedger, stampConf.ContractId())

	// Mount API
	{
		if stampConf.Chainhook.AuthToken == "" {
			logger.WarnContext(ctx, "Chainhook auth token is not set, webhook endpoints will reject every request")
		}

		httpServer := do.MustInvoke[*fiber.App](injector)
		stampHTTPHandler := api.NewHTTPHandler(stampUsecase)
		webhooks := httpServer.Group(webhookBasePath, authtoken.New(authtoken.Config{
			Token: stampConf.Chainhook.AuthToken,
		}))
		if err := stampHTTPHandler.MountWebhooks(webhooks); err != nil {
			return nil, errors.Wrap(err, "can't mount webhooks")
		}
		if err := stampHTTPHandler.Mount(httpServer); err != nil {
			return nil, errors.Wrap(err, "can't mount Stamp API")
		}
		logger.InfoContext(ctx, "Mounted HTTP handler")
	}

	var tasks []worker.Task
	if stampConf.Chainhook.Register {
		registrar, err := newRegistrar(ctx, conf)
		if err != nil {
			// the service keeps serving webhooks from predicates registered out of band
			logger.ErrorContext(ctx, "Invalid chainhook registration configuration, skip registration", slogx.Error(err))
		} else {
			tasks = append(tasks, worker.Task{
				Name: "chainhook_registration",
				Run: func(ctx context.Context) error {
					return errors.Wrap(registrar.Register(ctx, hooks(stampConf.ContractName)), "can't register chainhooks")
				},
			})
		}
	}

	return worker.New("stamp", tasks...), nil
}

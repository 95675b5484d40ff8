package faucet

import (
	"context"
	"strings"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/gaze-network/stamp-indexer/core/worker"
	"github.com/gaze-network/stamp-indexer/internal/config"
	"github.com/gaze-network/stamp-indexer/modules/faucet/api"
	faucetconfig "github.com/gaze-network/stamp-indexer/modules/faucet/config"
	"github.com/gaze-network/stamp-indexer/modules/faucet/datagateway"
	"github.com/gaze-network/stamp-indexer/modules/faucet/repository/memory"
	redisrepository "github.com/gaze-network/stamp-indexer/modules/faucet/repository/redis"
	"github.com/gaze-network/stamp-indexer/modules/faucet/usecase"
	"github.com/gaze-network/stamp-indexer/pkg/logger"
	"github.com/gaze-network/stamp-indexer/pkg/logger/slogx"
	"github.com/gaze-network/stamp-indexer/pkg/metrics"
	"github.com/gaze-network/stamp-indexer/pkg/stacksapi"
	"github.com/gaze-network/stamp-indexer/pkg/stackstx"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"
)

func New(injector do.Injector) (worker.Worker, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)
	faucetConf := conf.Faucet
	ctx = logger.WithContext(ctx, slogx.Stringer("network", conf.Network))

	if !conf.Network.IsSupported() {
		return nil, errors.Wrapf(errs.Unsupported, "network %q", conf.Network)
	}

	stacksClient, err := stacksapi.New(utils.Default(conf.StacksAPI.BaseURL, conf.Network.Params().APIBaseURL), conf.StacksAPI.Debug)
	if err != nil {
		return nil, errors.Wrap(err, "can't create Stacks API client")
	}

	var signer usecase.Signer
	if faucetConf.PrivateKey != "" {
		s, err := stackstx.NewSigner(faucetConf.PrivateKey, conf.Network)
		if err != nil {
			return nil, errors.Wrap(err, "invalid faucet private key")
		}
		if faucetConf.Address != "" && faucetConf.Address != s.Address() {
			logger.WarnContext(ctx, "Configured faucet address does not match the private key, the key's address is used to send",
				slogx.String("configured", faucetConf.Address),
				slogx.String("derived", s.Address()),
			)
		}
		signer = s
	} else if faucetConf.Enabled {
		logger.WarnContext(ctx, "Faucet private key is not set, claims will fail")
	}

	cleanup, cooldownDg, tasks, err := newCooldownStore(ctx, faucetConf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	faucetUsecase := usecase.New(conf.Network, faucetConf, signer, stacksClient, cooldownDg)

	// Mount API
	{
		httpServer := do.MustInvoke[*fiber.App](injector)
		faucetHTTPHandler := api.NewHTTPHandler(faucetUsecase, stacksClient)
		if err := faucetHTTPHandler.Mount(httpServer); err != nil {
			return nil, errors.Wrap(err, "can't mount Faucet API")
		}
		logger.InfoContext(ctx, "Mounted HTTP handler",
			slogx.Bool("enabled", faucetConf.Enabled),
			slogx.String("address", faucetUsecase.Address()),
			slogx.String("stacksApi", stacksClient.BaseURL()),
		)
	}

	w := worker.New("faucet", tasks...)
	if cleanup != nil {
		w.OnShutdown(cleanup)
	}
	return w, nil
}

// newCooldownStore opens the configured cooldown store. It returns a cleanup to run on shutdown (if any) and the
// background tasks the store needs.
func newCooldownStore(ctx context.Context, conf faucetconfig.Config) (func(context.Context) error, datagateway.CooldownDataGateway, []worker.Task, error) {
	switch strings.ToLower(utils.Default(conf.Store, storeMemory)) {
	case storeMemory:
		repo := memory.NewRepository()
		return nil, repo, []worker.Task{{
			Name:     "cooldown_sweep",
			Interval: sweepInterval,
			Run: func(ctx context.Context) error {
				removed, err := repo.Sweep(ctx)
				if err != nil {
					return errors.Wrap(err, "can't sweep cooldown entries")
				}
				metrics.FaucetCooldownEntries.Set(float64(repo.Size()))
				if removed > 0 {
					logger.DebugContext(ctx, "Swept expired cooldown entries", slogx.Int("removed", removed))
				}
				return nil
			},
		}}, nil
	case storeRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Username: conf.Redis.Username,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, nil, errors.Wrapf(err, "can't connect to redis at %s", conf.Redis.Addr)
		}
		logger.InfoContext(ctx, "Connected to redis cooldown store", slogx.String("addr", conf.Redis.Addr))
		cleanup := func(context.Context) error {
			return errors.Wrap(client.Close(), "can't close redis client")
		}
		return cleanup, redisrepository.NewRepository(client, conf.Redis.KeyPrefix), nil, nil
	default:
		return nil, nil, nil, errors.Wrapf(errs.Unsupported, "faucet store %q", conf.Store)
	}
}

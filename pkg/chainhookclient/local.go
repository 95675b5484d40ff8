package chainhookclient

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/gaze-network/stamp-indexer/pkg/httpclient"
	"github.com/gaze-network/stamp-indexer/pkg/logger"
	"github.com/gaze-network/stamp-indexer/pkg/logger/slogx"
)

const (
	localService = "chainhook_node"

	defaultPingTimeout  = 30 * time.Second
	defaultPingInterval = time.Second
)

var hiroPublicAPI = regexp.MustCompile(`(?i)^https?://api\.(testnet|mainnet)\.hiro\.so/?$`)

type predicateStatus int

const (
	predicateMissing predicateStatus = iota
	predicateDisabled
	predicateActive
)

// LocalClient registers predicates on a self-hosted chainhook node.
type LocalClient struct {
	httpClient   *httpclient.Client
	target       Target
	pingTimeout  time.Duration
	pingInterval time.Duration
}

func NewLocal(nodeURL string, target Target) (*LocalClient, error) {
	if hiroPublicAPI.MatchString(nodeURL) {
		return nil, errors.Wrapf(errs.InvalidArgument, "chainhook node url %q is a Hiro Stacks API url, use the hiro provider for hosted chainhooks", nodeURL)
	}
	if err := target.validate(); err != nil {
		return nil, errors.WithStack(err)
	}
	httpClient, err := httpclient.New(nodeURL)
	if err != nil {
		return nil, errors.Wrap(err, "can't create http client")
	}
	return &LocalClient{
		httpClient:   httpClient,
		target:       target,
		pingTimeout:  defaultPingTimeout,
		pingInterval: defaultPingInterval,
	}, nil
}

// Register waits for the node, then creates missing predicates and recreates disabled ones. Active
// predicates are left untouched.
func (c *LocalClient) Register(ctx context.Context, hooks []Hook) error {
	ctx = logger.WithContext(ctx, slog.String("package", "chainhookclient"), slog.String("provider", string(ProviderLocal)))
	if err := c.waitForNode(ctx); err != nil {
		return errors.WithStack(err)
	}

	for _, hook := range hooks {
		status := c.predicateStatus(ctx, hook.Name)
		if status == predicateActive {
			logger.DebugContext(ctx, "Predicate is active", slogx.String("uuid", hook.Name))
			continue
		}
		if status == predicateDisabled {
			if err := c.deletePredicate(ctx, hook.Name); err != nil {
				return errors.Wrapf(err, "can't delete predicate %s", hook.Name)
			}
		}
		if err := c.createPredicate(ctx, hook); err != nil {
			return errors.Wrapf(err, "can't create predicate %s", hook.Name)
		}
		logger.InfoContext(ctx, "Predicate registered", slogx.String("uuid", hook.Name), slogx.String("method", hook.Method))
	}
	return nil
}

func (c *LocalClient) waitForNode(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		resp, err := c.httpClient.Get(ctx, "/ping", httpclient.RequestOptions{})
		if err == nil && resp.IsSuccess() {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrapf(errs.Timeout, "chainhook node at %s is not reachable", c.httpClient.BaseURL())
		case <-ticker.C:
		}
	}
}

type predicateStatusResponse struct {
	Result *struct {
		Enabled bool `json:"enabled"`
	} `json:"result"`
}

// predicateStatus treats every unexpected answer as disabled, so the predicate gets recreated.
func (c *LocalClient) predicateStatus(ctx context.Context, uuid string) predicateStatus {
	resp, err := c.httpClient.Get(ctx, "/v1/chainhooks/"+uuid, httpclient.RequestOptions{
		Header: map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		observe(localService, "get_predicate", 0, err)
		logger.WarnContext(ctx, "Can't get predicate status", slogx.String("uuid", uuid), slogx.Error(err))
		return predicateDisabled
	}
	observe(localService, "get_predicate", resp.StatusCode(), nil)
	if resp.StatusCode() == http.StatusNotFound {
		return predicateMissing
	}
	if !resp.IsSuccess() {
		return predicateDisabled
	}

	var status predicateStatusResponse
	if err := json.Unmarshal(resp.Body(), &status); err != nil || status.Result == nil || !status.Result.Enabled {
		return predicateDisabled
	}
	return predicateActive
}

func (c *LocalClient) deletePredicate(ctx context.Context, uuid string) error {
	resp, err := c.httpClient.Delete(ctx, "/v1/chainhooks/stacks/"+uuid, httpclient.RequestOptions{
		Header: map[string]string{"Content-Type": "application/json"},
	})
	observe(localService, "delete_predicate", statusOf(resp), err)
	if err != nil {
		return errors.Wrap(err, "can't send request")
	}
	if !resp.IsSuccess() {
		logger.WarnContext(ctx, "Chainhook node refused to delete predicate",
			slogx.String("uuid", uuid),
			slogx.Int("status", resp.StatusCode()),
		)
	}
	return nil
}

type predicate struct {
	UUID     string                      `json:"uuid"`
	Name     string                      `json:"name"`
	Version  int                         `json:"version"`
	Chain    string                      `json:"chain"`
	Networks map[string]predicateNetwork `json:"networks"`
}

type predicateNetwork struct {
	IfThis              predicateIfThis   `json:"if_this"`
	ThenThat            predicateThenThat `json:"then_that"`
	DecodeClarityValues bool              `json:"decode_clarity_values"`
	IncludeContractABI  bool              `json:"include_contract_abi"`
}

type predicateIfThis struct {
	Scope              string `json:"scope"`
	ContractIdentifier string `json:"contract_identifier"`
	Method             string `json:"method"`
}

type predicateThenThat struct {
	HTTPPost predicateHTTPPost `json:"http_post"`
}

type predicateHTTPPost struct {
	URL                 string `json:"url"`
	AuthorizationHeader string `json:"authorization_header"`
}

func (c *LocalClient) buildPredicate(hook Hook) predicate {
	return predicate{
		UUID:    hook.Name,
		Name:    hook.Name,
		Version: 1,
		Chain:   "stacks",
		Networks: map[string]predicateNetwork{
			c.target.Network.String(): {
				IfThis: predicateIfThis{
					Scope:              "contract_call",
					ContractIdentifier: c.target.ContractId,
					Method:             hook.Method,
				},
				ThenThat: predicateThenThat{
					HTTPPost: predicateHTTPPost{
						URL:                 strings.TrimSuffix(c.target.ExternalURL, "/") + hook.WebhookPath,
						AuthorizationHeader: "Bearer " + c.target.AuthToken,
					},
				},
				DecodeClarityValues: true,
				IncludeContractABI:  false,
			},
		},
	}
}

func (c *LocalClient) createPredicate(ctx context.Context, hook Hook) error {
	body, err := json.Marshal(c.buildPredicate(hook))
	if err != nil {
		return errors.Wrap(err, "can't marshal predicate")
	}
	resp, err := c.httpClient.Post(ctx, "/v1/chainhooks", httpclient.RequestOptions{
		Body: body,
	})
	observe(localService, "create_predicate", statusOf(resp), err)
	if err != nil {
		return errors.Wrap(err, "can't send request")
	}
	if !resp.IsSuccess() {
		return errors.Errorf("chainhook node answered with status %d: %s", resp.StatusCode(), resp.Body())
	}
	return nil
}

func statusOf(resp *httpclient.HttpResponse) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode()
}

func statusLabel(status int) string {
	return strconv.Itoa(status)
}

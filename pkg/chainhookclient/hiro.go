package chainhookclient

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/gaze-network/stamp-indexer/pkg/httpclient"
	"github.com/gaze-network/stamp-indexer/pkg/logger"
	"github.com/gaze-network/stamp-indexer/pkg/logger/slogx"
	"github.com/samber/lo"
)

const (
	hiroService = "hiro_chainhooks"

	hiroBasePath = "/chainhooks/v1/me"
	hiroPageSize = 60
)

// HiroClient upserts chainhooks by name on the Hiro hosted service.
type HiroClient struct {
	httpClient *httpclient.Client
	target     Target
}

func NewHiro(baseURL string, apiKey string, target Target) (*HiroClient, error) {
	if apiKey == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "hiro api key is required")
	}
	if err := target.validate(); err != nil {
		return nil, errors.WithStack(err)
	}
	httpClient, err := httpclient.New(baseURL, httpclient.Config{
		Headers: map[string]string{"x-api-key": apiKey},
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't create http client")
	}
	return &HiroClient{
		httpClient: httpClient,
		target:     target,
	}, nil
}

type Chainhook struct {
	UUID       string              `json:"uuid"`
	Definition ChainhookDefinition `json:"definition"`
}

type ChainhookDefinition struct {
	Version string           `json:"version"`
	Name    string           `json:"name"`
	Chain   string           `json:"chain"`
	Network string           `json:"network"`
	Filters chainhookFilters `json:"filters"`
	Action  chainhookAction  `json:"action"`
	Options chainhookOptions `json:"options"`
}

type chainhookFilters struct {
	Events []chainhookEventFilter `json:"events"`
}

type chainhookEventFilter struct {
	Type               string `json:"type"`
	ContractIdentifier string `json:"contract_identifier"`
	FunctionName       string `json:"function_name"`
}

type chainhookAction struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type chainhookOptions struct {
	DecodeClarityValues  bool `json:"decode_clarity_values"`
	EnableOnRegistration bool `json:"enable_on_registration"`
}

type listChainhooksResponse struct {
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
	Total   int         `json:"total"`
	Results []Chainhook `json:"results"`
}

// Register creates hooks not yet known by name, and updates then enables the existing ones.
func (c *HiroClient) Register(ctx context.Context, hooks []Hook) error {
	ctx = logger.WithContext(ctx, slog.String("package", "chainhookclient"), slog.String("provider", string(ProviderHiro)))

	existing, err := c.listChainhooks(ctx)
	if err != nil {
		return errors.Wrap(err, "can't list chainhooks")
	}
	byName := lo.SliceToMap(existing, func(hook Chainhook) (string, Chainhook) {
		return hook.Definition.Name, hook
	})

	for _, hook := range hooks {
		definition, err := c.buildDefinition(hook)
		if err != nil {
			return errors.WithStack(err)
		}

		current, ok := byName[hook.Name]
		if !ok {
			created, err := c.registerChainhook(ctx, definition)
			if err != nil {
				return errors.Wrapf(err, "can't register chainhook %s", hook.Name)
			}
			logger.InfoContext(ctx, "Chainhook registered", slogx.String("name", hook.Name), slogx.String("uuid", created.UUID))
			continue
		}

		if err := c.updateChainhook(ctx, current.UUID, definition); err != nil {
			return errors.Wrapf(err, "can't update chainhook %s", hook.Name)
		}
		if err := c.enableChainhook(ctx, current.UUID); err != nil {
			return errors.Wrapf(err, "can't enable chainhook %s", hook.Name)
		}
		logger.InfoContext(ctx, "Chainhook updated", slogx.String("name", hook.Name), slogx.String("uuid", current.UUID))
	}
	return nil
}

// webhookURL appends the shared secret as `?token=`; hosted chainhooks can't send an authorization header.
func (c *HiroClient) webhookURL(path string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(c.target.ExternalURL, "/") + path)
	if err != nil {
		return "", errors.Wrap(err, "can't parse webhook url")
	}
	if c.target.AuthToken != "" {
		query := u.Query()
		query.Set("token", c.target.AuthToken)
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

func (c *HiroClient) buildDefinition(hook Hook) (ChainhookDefinition, error) {
	webhookURL, err := c.webhookURL(hook.WebhookPath)
	if err != nil {
		return ChainhookDefinition{}, errors.WithStack(err)
	}
	return ChainhookDefinition{
		Version: "1",
		Name:    hook.Name,
		Chain:   "stacks",
		Network: c.target.Network.String(),
		Filters: chainhookFilters{
			Events: []chainhookEventFilter{{
				Type:               "contract_call",
				ContractIdentifier: c.target.ContractId,
				FunctionName:       hook.Method,
			}},
		},
		Action: chainhookAction{
			Type: "http_post",
			URL:  webhookURL,
		},
		Options: chainhookOptions{
			DecodeClarityValues:  true,
			EnableOnRegistration: true,
		},
	}, nil
}

func (c *HiroClient) listChainhooks(ctx context.Context) ([]Chainhook, error) {
	var hooks []Chainhook
	offset := 0
	for {
		resp, err := c.httpClient.Get(ctx, hiroBasePath, httpclient.RequestOptions{
			Query: url.Values{
				"limit":  []string{strconv.Itoa(hiroPageSize)},
				"offset": []string{strconv.Itoa(offset)},
			},
		})
		observe(hiroService, "list_chainhooks", statusOf(resp), err)
		if err != nil {
			return nil, errors.Wrap(err, "can't send request")
		}
		if !resp.IsSuccess() {
			return nil, errors.Errorf("hiro chainhooks answered with status %d: %s", resp.StatusCode(), resp.Body())
		}

		var page listChainhooksResponse
		if err := resp.UnmarshalBody(&page); err != nil {
			return nil, errors.WithStack(err)
		}
		hooks = append(hooks, page.Results...)

		offset += len(page.Results)
		if offset >= page.Total || len(page.Results) == 0 {
			return hooks, nil
		}
	}
}

func (c *HiroClient) registerChainhook(ctx context.Context, definition ChainhookDefinition) (*Chainhook, error) {
	body, err := json.Marshal(definition)
	if err != nil {
		return nil, errors.Wrap(err, "can't marshal chainhook definition")
	}
	resp, err := c.httpClient.Post(ctx, hiroBasePath, httpclient.RequestOptions{
		Body: body,
	})
	observe(hiroService, "register_chainhook", statusOf(resp), err)
	if err != nil {
		return nil, errors.Wrap(err, "can't send request")
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("hiro chainhooks answered with status %d: %s", resp.StatusCode(), resp.Body())
	}

	var created Chainhook
	if err := resp.UnmarshalBody(&created); err != nil {
		return nil, errors.WithStack(err)
	}
	return &created, nil
}

func (c *HiroClient) updateChainhook(ctx context.Context, uuid string, definition ChainhookDefinition) error {
	body, err := json.Marshal(definition)
	if err != nil {
		return errors.Wrap(err, "can't marshal chainhook definition")
	}
	resp, err := c.httpClient.Patch(ctx, hiroBasePath+"/"+uuid, httpclient.RequestOptions{
		Body: body,
	})
	observe(hiroService, "update_chainhook", statusOf(resp), err)
	if err != nil {
		return errors.Wrap(err, "can't send request")
	}
	if !resp.IsSuccess() {
		return errors.Errorf("hiro chainhooks answered with status %d: %s", resp.StatusCode(), resp.Body())
	}
	return nil
}

func (c *HiroClient) enableChainhook(ctx context.Context, uuid string) error {
	resp, err := c.httpClient.Patch(ctx, hiroBasePath+"/"+uuid+"/enabled", httpclient.RequestOptions{
		Body: []byte(`{"enabled":true}`),
	})
	observe(hiroService, "enable_chainhook", statusOf(resp), err)
	if err != nil {
		return errors.Wrap(err, "can't send request")
	}
	if !resp.IsSuccess() {
		return errors.Errorf("hiro chainhooks answered with status %d: %s", resp.StatusCode(), resp.Body())
	}
	return nil
}

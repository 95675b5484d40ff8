// Package chainhookclient registers contract-call hooks that deliver matching Stacks transactions to the webhook
// endpoints, either on a self-hosted chainhook node or on the Hiro hosted chainhooks service.
package chainhookclient

import (
	"context"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/gaze-network/stamp-indexer/pkg/metrics"
)

type Provider string

const (
	ProviderLocal Provider = "local"
	ProviderHiro  Provider = "hiro"
)

func (p Provider) IsValid() bool {
	return p == ProviderLocal || p == ProviderHiro
}

// Hook is one contract-call subscription. Name doubles as the predicate uuid on a local node.
type Hook struct {
	Name        string
	Method      string
	WebhookPath string // path on the external URL, e.g. `/webhooks/paid-mint`
}

// Target is what every hook of a registration run points at.
type Target struct {
	ContractId  string
	Network     common.Network
	ExternalURL string
	AuthToken   string
}

func (t Target) validate() error {
	if t.ContractId == "" {
		return errors.Wrap(errs.InvalidArgument, "contract id is required")
	}
	if !t.Network.IsSupported() {
		return errors.Wrapf(errs.Unsupported, "network %q", t.Network)
	}
	if _, err := url.Parse(t.ExternalURL); err != nil || t.ExternalURL == "" {
		return errors.Wrapf(errs.InvalidArgument, "invalid external url %q", t.ExternalURL)
	}
	return nil
}

// Registrar makes sure the given hooks exist and are enabled.
type Registrar interface {
	Register(ctx context.Context, hooks []Hook) error
}

func observe(service, operation string, status int, err error) {
	label := "error"
	if err == nil {
		label = statusLabel(status)
	}
	metrics.UpstreamRequests.WithLabelValues(service, operation, label).Inc()
}

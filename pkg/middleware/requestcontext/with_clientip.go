package requestcontext

import (
	"context"
	"net/http"
	"net/netip"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/gaze-network/stamp-indexer/pkg/logger"
	"github.com/gaze-network/stamp-indexer/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type clientIPKey struct{}

type WithClientIPConfig struct {
	// TrustedHeader carries the client IP set by the edge proxy (e.g. `CF-Connecting-IP`, `X-Real-IP`).
	// A valid IP in it wins over `X-Forwarded-For`.
	TrustedHeader string `mapstructure:"trusted_proxies_header"`

	// TrustedProxiesIP are the CIDR ranges of every proxy between the client and this service. When set, the
	// client IP is the last `X-Forwarded-For` entry outside of them.
	TrustedProxiesIP []string `mapstructure:"trusted_proxies_ip"`

	// RejectUntrusted answers 403 to forwarded requests whose client IP can't be resolved from trusted proxies.
	RejectUntrusted bool `mapstructure:"reject_untrusted"`
}

// WithClientIP resolves the client IP used by the faucet IP cooldown and the request logs. Without any trusted
// configuration it is the first `X-Forwarded-For` entry, else the remote address.
func WithClientIP(config WithClientIPConfig) Option {
	trusted, err := parsePrefixes(config.TrustedProxiesIP)
	if err != nil {
		logger.Panic("Failed to parse trusted proxies", slogx.Error(err))
	}

	resolve := func(c *fiber.Ctx) (string, bool) {
		if config.TrustedHeader != "" {
			if ip, err := netip.ParseAddr(strings.TrimSpace(c.Get(config.TrustedHeader))); err == nil {
				return ip.String(), true
			}
		}

		forwarded := c.IPs()
		if len(forwarded) == 0 {
			return c.IP(), true
		}
		if len(trusted) > 0 {
			for i := len(forwarded) - 1; i >= 0; i-- {
				ip, err := netip.ParseAddr(forwarded[i])
				if err != nil || !isTrusted(trusted, ip) {
					return forwarded[i], true
				}
			}
		}
		return forwarded[0], len(trusted) > 0
	}

	return func(ctx context.Context, c *fiber.Ctx) (context.Context, error) {
		ip, ok := resolve(c)
		if !ok && config.RejectUntrusted {
			logger.WarnContext(ctx, "Client IP can't be resolved from trusted proxies, request rejected",
				slogx.String("event", "requestcontext/ip_spoofing_detected"),
				slogx.String("remoteIP", c.IP()),
				slogx.Any("forwarded", c.IPs()),
			)
			return nil, errs.NewPublicErrorWithStatus("not allowed to access", http.StatusForbidden)
		}
		return context.WithValue(ctx, clientIPKey{}, ip), nil
	}
}

// GetClientIP returns the client IP of the request, or empty when the request context middleware did not run.
func GetClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

func parsePrefixes(ranges []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(ranges))
	for _, r := range ranges {
		prefix, err := netip.ParsePrefix(strings.TrimSpace(r))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid trusted proxy range %q", r)
		}
		prefixes = append(prefixes, prefix)
	}
	return prefixes, nil
}

func isTrusted(prefixes []netip.Prefix, ip netip.Addr) bool {
	ip = ip.Unmap()
	return lo.ContainsBy(prefixes, func(prefix netip.Prefix) bool {
		return prefix.Contains(ip)
	})
}

package stamp

const (
	Version = "v0.1.0"

	// webhookBasePath is where the chainhook routes are mounted and where registered predicates post.
	webhookBasePath = "/webhooks"
)

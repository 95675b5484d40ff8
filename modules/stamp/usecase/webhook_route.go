package usecase

// WebhookRoute identifies a webhook endpoint. Each route accepts exactly one contract method.
type WebhookRoute string

const (
	WebhookRoutePaidMint  WebhookRoute = "paid-mint"
	WebhookRouteFreeMint  WebhookRoute = "free-mint"
	WebhookRouteOwnerMint WebhookRoute = "owner-mint"
	WebhookRouteTransfer  WebhookRoute = "transfer"
	WebhookRouteBurn      WebhookRoute = "burn"
)

// WebhookRoutes lists every route in registration order.
var WebhookRoutes = []WebhookRoute{
	WebhookRoutePaidMint,
	WebhookRouteFreeMint,
	WebhookRouteOwnerMint,
	WebhookRouteTransfer,
	WebhookRouteBurn,
}

var routeMethods = map[WebhookRoute]string{
	WebhookRoutePaidMint:  "mint",
	WebhookRouteFreeMint:  "free-mint",
	WebhookRouteOwnerMint: "owner-mint",
	WebhookRouteTransfer:  "transfer",
	WebhookRouteBurn:      "burn",
}

// positional arguments read by each method's mapping
var routeArity = map[WebhookRoute]int{
	WebhookRoutePaidMint:  2,
	WebhookRouteFreeMint:  2,
	WebhookRouteOwnerMint: 3,
	WebhookRouteTransfer:  3,
	WebhookRouteBurn:      1,
}

func (r WebhookRoute) IsValid() bool {
	_, ok := routeMethods[r]
	return ok
}

// Method returns the contract method name the route accepts.
func (r WebhookRoute) Method() string {
	return routeMethods[r]
}

// Path returns the HTTP path the route is mounted on, relative to the webhook group.
func (r WebhookRoute) Path() string {
	return "/" + string(r)
}

func (r WebhookRoute) String() string {
	return string(r)
}

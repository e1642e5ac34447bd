package constants

const (
	// Transaction listing
	DefaultTransactionLimit = 50
	MaxTransactionLimit     = 500

	// HTTP Headers
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"

	// Context keys
	ContextKeyActorID   = "actor_id"
	ContextKeyRequestID = "request_id"

	// Webhook bodies larger than this are rejected before verification.
	MaxWebhookBodyBytes = 1 << 20
)

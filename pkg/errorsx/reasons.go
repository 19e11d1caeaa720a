package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	ReasonLookupFailed   ReasonCode = "lookup_failed"
	ReasonLookupNotFound ReasonCode = "lookup_not_found"

	ReasonSubmitFailed   ReasonCode = "submit_failed"
	ReasonSubmitRejected ReasonCode = "submit_rejected"
	ReasonOutboxEnqueue  ReasonCode = "outbox_enqueue"

	ReasonDialogueInternal ReasonCode = "dialogue_internal"
	ReasonSessionStore     ReasonCode = "session_store"

	ReasonConfigInvalid ReasonCode = "config_invalid"

	ReasonTransportInvalidSignature ReasonCode = "webhook_invalid_signature"
	ReasonTransportRender           ReasonCode = "transport_render"
)

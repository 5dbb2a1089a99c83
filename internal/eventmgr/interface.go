package eventmgr

// 核心内约定的事件 ID。
const (
	// EventIDReceiptCommitted 在审计账本完成一个非空批次的锚定后发布，负载为批次回执的 JSON。
	EventIDReceiptCommitted = "audit_receipt_committed"
	// EventIDWrapRevoked 在签发协调器将 wrap 令牌标记为已撤销后发布，负载为 `WrapRevokedEvent` 的 JSON。
	EventIDWrapRevoked = "wrap_revoked"
)

// WrapRevokedEvent 为撤销事件的负载。
type WrapRevokedEvent struct {
	WrapID    string `json:"wrapID"`    // 被撤销的 wrap 令牌 ID
	RequestID string `json:"requestID"` // 关联的访问请求 ID
}

type IEventManager interface {
	// RegisterEvent registers an event by its ID. Events with the ID published later will be
	// delivered to the returned channel until the registration is unregistered.
	//
	// Returns:
	//   the registration (used to unregister the event)
	//   the event channel
	RegisterEvent(eventID string) (IEventRegistration, <-chan IEvent, error)

	// UnregisterEvent unregisters a registration. The registration must be produced by the same event manager instance.
	UnregisterEvent(reg IEventRegistration) error

	// Publish delivers an event to every active registration of the event ID.
	// 交付语义为 at-least-once，消费方须幂等处理。
	Publish(eventID string, payload []byte) error
}

type IEventRegistration interface {
	GetEventID() string
}

type IEvent interface {
	GetEventName() string
	GetPayload() []byte
}

package pubsub

// Client publishes ledger lifecycle events for downstream consumers.
type Client interface {
	SendMessage(topic EventType, data any) error
	ProcessMessage(data []byte, returnValue any) error
}

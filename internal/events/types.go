package events

// Event enumerates the topics flowing through the decision core.
type Event string

const (
	EventSnapshot    Event = "market.snapshot"
	EventSignal      Event = "signal.emitted"
	EventFill        Event = "fill.received"
	EventOrderUpdate Event = "order.update"
	EventRiskAlert   Event = "risk.alert"
)

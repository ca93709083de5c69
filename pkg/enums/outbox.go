package enums

// OutboxEventType enumerates the domain events emitted by the fulfillment core.
type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order.created"
	EventOrderStatusChanged OutboxEventType = "order.status_changed"
	EventOrderAssigned      OutboxEventType = "order.assigned"
	EventOrderDelivered     OutboxEventType = "order.delivered"
	EventRatingSubmitted    OutboxEventType = "rating.submitted"
)

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder    OutboxAggregateType = "order"
	AggregateShipment OutboxAggregateType = "shipment"
	AggregateRating   OutboxAggregateType = "rating"
)

// OutboxStatus tracks publisher progress on an event row.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusTerminal  OutboxStatus = "terminal"
)

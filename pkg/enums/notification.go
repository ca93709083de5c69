package enums

// NotificationType labels the in-app notification rows created by the worker.
type NotificationType string

const (
	NotificationOrderCreated       NotificationType = "order_created"
	NotificationOrderStatusChanged NotificationType = "order_status_changed"
	NotificationOrderAssigned      NotificationType = "order_assigned"
	NotificationOrderDelivered     NotificationType = "order_delivered"
	NotificationRatingReceived     NotificationType = "rating_received"
)

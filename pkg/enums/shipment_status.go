package enums

// ShipmentStatus mirrors the delivery-relevant subset of the order lifecycle.
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "pending"
	ShipmentStatusAssigned  ShipmentStatus = "assigned"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
	ShipmentStatusCancelled ShipmentStatus = "cancelled"
)

package enums

// Role is the caller role resolved from the access token.
type Role string

const (
	RoleCustomer Role = "customer"
	RolePartner  Role = "partner"
	RoleDriver   Role = "driver"
	RoleAdmin    Role = "admin"
)

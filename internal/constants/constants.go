package constants

// Pagination bounds applied to every list endpoint.
const (
	MinPage         = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Gin context keys.
const (
	ContextKeyClaims      = "auth_claims"
	ContextKeyCurrentUser = "current_user"
)

// Identity-provider role claims.
const (
	ClaimRoleUser  = "User"
	ClaimRoleAdmin = "Admin"
)

// License settings.
const (
	DefaultExpirationMinutes = 10
	LicenseExpirationKey     = "LicenseExpirationMinutes"
)

// InvitationExpirationDays is how long an invitation token stays valid.
const InvitationExpirationDays = 7

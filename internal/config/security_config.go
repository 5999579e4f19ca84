// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic   SecurityLevel = iota // No authentication
	SecurityOptional                      // Identity used when a valid token is sent
	SecurityAccess                        // Access token required
	SecurityAdmin                         // Access token with an admin or scheduler role
)

// Route names as registered on the HTTP router.
const (
	RouteHealth            = "Health"
	RouteListActive        = "ListActive"
	RouteGetDetail         = "GetDetail"
	RouteCreateRequest     = "CreateRequest"
	RouteJoinRequest       = "JoinRequest"
	RouteAcceptParticipant = "AcceptParticipant"
	RouteRejectOrWithdraw  = "RejectOrWithdraw"
	RouteCancelRequest     = "CancelRequest"
	RouteMyHistory         = "MyHistory"
	RouteBookingHasRequest = "BookingHasRequest"
	RouteExpireOldRequests = "ExpireOldRequests"
)

// EndpointSecurityConfig maps route names to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	RouteHealth: SecurityPublic,

	RouteListActive:        SecurityOptional,
	RouteGetDetail:         SecurityOptional,
	RouteBookingHasRequest: SecurityOptional,

	RouteCreateRequest:     SecurityAccess,
	RouteJoinRequest:       SecurityAccess,
	RouteAcceptParticipant: SecurityAccess,
	RouteRejectOrWithdraw:  SecurityAccess,
	RouteCancelRequest:     SecurityAccess,
	RouteMyHistory:         SecurityAccess,

	RouteExpireOldRequests: SecurityAdmin,
}

// AdminRoles may trigger administrative operations such as a manual sweep.
var AdminRoles = []string{"ADMIN", "SCHEDULER"}

// GetSecurityLevel returns the security level for a given route
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAdmin
}

package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

// Role is the access level carried in the bearer token. There is no
// hierarchy: every protected route enumerates the exact roles it accepts.
type Role string

const (
	RoleDelegate          Role = "DELEGATE"
	RoleSuperAdmin        Role = "SUPER_ADMIN"
	RoleSoftwareAdmin     Role = "SOFTWARE_ADMIN"
	RoleRegistrationAdmin Role = "REGISTRATION_ADMIN"
	RoleDelegateAffairs   Role = "DELEGATE_AFFAIRS"
	RoleHospitalityAdmin  Role = "HOSPITALITY_ADMIN"
	RoleCheckinAdmin      Role = "CHECKIN_ADMIN"
)

var AllRoles = []Role{
	RoleDelegate,
	RoleSuperAdmin,
	RoleSoftwareAdmin,
	RoleRegistrationAdmin,
	RoleDelegateAffairs,
	RoleHospitalityAdmin,
	RoleCheckinAdmin,
}

func ValidRole(r Role) bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (r Role) IsAdmin() bool {
	return r != RoleDelegate && ValidRole(r)
}

// Registration review states.
const (
	RegistrationPending     = "pending"
	RegistrationShortlisted = "shortlisted"
	RegistrationConfirmed   = "confirmed"
	RegistrationRejected    = "rejected"
)

// Payment states, shared by Payment.Status and Registration.PaymentStatus.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// Check-in record types and states.
const (
	CheckInConference    = "conference"
	CheckInAccommodation = "accommodation"

	CheckedIn  = "checked-in"
	CheckedOut = "checked-out"
)

// Delegate categories tied to pricing rows.
const (
	DelegateInternal = "internal"
	DelegateExternal = "external"
)

// Contact message triage states.
const (
	ContactNew      = "new"
	ContactSeen     = "seen"
	ContactResolved = "resolved"
)

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}

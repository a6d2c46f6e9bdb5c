package domain

import "strings"

// Role tags which application section a session may enter.
type Role string

const (
	RoleCustomer        Role = "Customer"
	RoleAdmin           Role = "Admin"
	RoleServiceProvider Role = "ServiceProvider"
	RoleThirdParty      Role = "ThirdParty"
)

// Section root paths.
const (
	PathLanding           = "/"
	PathUnauthorized      = "/unauthorized"
	PathCustomer          = "/customer"
	PathCustomerDashboard = "/customer/dashboard"
	PathAdmin             = "/admin"
	PathServiceProvider   = "/service-provider"
	PathThirdParty        = "/thirdparty"
	PathAdminLogin        = "/adminlogin"
)

// Roles lists every known role.
func Roles() []Role {
	return []Role{RoleCustomer, RoleAdmin, RoleServiceProvider, RoleThirdParty}
}

// ParseRole maps a role string to a Role ignoring case. Hyphenated spellings
// ("service-provider", "third-party") are accepted.
func ParseRole(value string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "customer":
		return RoleCustomer, true
	case "admin":
		return RoleAdmin, true
	case "serviceprovider", "service-provider":
		return RoleServiceProvider, true
	case "thirdparty", "third-party":
		return RoleThirdParty, true
	default:
		return "", false
	}
}

// RoleFromClaim matches a token role claim exactly, without case folding.
func RoleFromClaim(value string) (Role, bool) {
	for _, r := range Roles() {
		if string(r) == value {
			return r, true
		}
	}
	return "", false
}

// SectionPath returns the root of the role's section.
func (r Role) SectionPath() string {
	switch r {
	case RoleCustomer:
		return PathCustomer
	case RoleAdmin:
		return PathAdmin
	case RoleServiceProvider:
		return PathServiceProvider
	case RoleThirdParty:
		return PathThirdParty
	default:
		return PathLanding
	}
}

// HomePath returns the landing page of the role's section. Customers land on
// their dashboard; the other sections redirect internally.
func (r Role) HomePath() string {
	if r == RoleCustomer {
		return PathCustomerDashboard
	}
	return r.SectionPath()
}

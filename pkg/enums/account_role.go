package enums

import "fmt"

// AccountRole positions an account inside the reseller hierarchy.
type AccountRole string

const (
	AccountRoleHeadquarter AccountRole = "HEADQUARTER"
	AccountRoleAgent       AccountRole = "AGENT"
	AccountRoleDistributor AccountRole = "DISTRIBUTOR"
	AccountRolePeer        AccountRole = "PEER"
	AccountRoleUser        AccountRole = "USER"
)

var validAccountRoles = []AccountRole{
	AccountRoleHeadquarter,
	AccountRoleAgent,
	AccountRoleDistributor,
	AccountRolePeer,
	AccountRoleUser,
}

// String implements fmt.Stringer.
func (a AccountRole) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AccountRole.
func (a AccountRole) IsValid() bool {
	for _, candidate := range validAccountRoles {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAccountRole converts raw input into an AccountRole.
func ParseAccountRole(value string) (AccountRole, error) {
	for _, candidate := range validAccountRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account role %q", value)
}

package enums

import "fmt"

// MemberRole describes a user's role inside a party.
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

var validMemberRoles = []MemberRole{
	MemberRoleOwner,
	MemberRoleAdmin,
	MemberRoleMember,
}

// String implements fmt.Stringer.
func (m MemberRole) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MemberRole.
func (m MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMemberRole converts raw input into a MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}

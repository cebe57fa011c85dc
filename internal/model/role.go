package model

import "fmt"

type Role string

const (
	RoleAdopter Role = "adopter"
	RoleOwner   Role = "owner"
	RoleShelter Role = "shelter"
	RoleAdmin   Role = "admin"
)

var roles = []Role{RoleAdopter, RoleOwner, RoleShelter, RoleAdmin}

// ParseRole accepts only the four known roles.
func ParseRole(s string) (Role, error) {
	for _, r := range roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

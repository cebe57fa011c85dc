// Package authz holds the role to capability matrix. Services ask for a
// capability instead of comparing role names.
package authz

import "github.com/shinyyama/petverse-backend/internal/model"

type Capability string

const (
	ManageShelterPets Capability = "manage_shelter_pets"
	ListOwnedPets     Capability = "list_owned_pets"
	RequestAdoption   Capability = "request_adoption"
	BookService       Capability = "book_service"
	Checkout          Capability = "checkout"
	Administer        Capability = "administer"
)

var matrix = map[model.Role]map[Capability]bool{
	model.RoleAdopter: {ListOwnedPets: true, RequestAdoption: true, BookService: true, Checkout: true},
	model.RoleOwner:   {ListOwnedPets: true, BookService: true, Checkout: true},
	model.RoleShelter: {ManageShelterPets: true, Checkout: true},
	model.RoleAdmin:   {Administer: true, Checkout: true},
}

func Can(u *model.User, c Capability) bool {
	if u == nil {
		return false
	}
	return matrix[u.Role][c]
}

// CanResolve reports whether u may approve or decline a request whose
// counterparty (shelter or current owner) is counterpartyID.
func CanResolve(u *model.User, counterpartyID uint64) bool {
	if u == nil {
		return false
	}
	return u.ID == counterpartyID || Can(u, Administer)
}

// Capabilities lists what role r may do, in a stable order.
func Capabilities(r model.Role) []Capability {
	all := []Capability{ManageShelterPets, ListOwnedPets, RequestAdoption, BookService, Checkout, Administer}
	out := make([]Capability, 0, len(all))
	for _, c := range all {
		if matrix[r][c] {
			out = append(out, c)
		}
	}
	return out
}

package authz

import (
	"testing"

	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/stretchr/testify/require"
)

func TestMatrix(t *testing.T) {
	tests := []struct {
		role model.Role
		cap  Capability
		want bool
	}{
		{model.RoleShelter, ManageShelterPets, true},
		{model.RoleOwner, ManageShelterPets, false},
		{model.RoleAdopter, ManageShelterPets, false},
		{model.RoleAdmin, ManageShelterPets, false},

		{model.RoleOwner, ListOwnedPets, true},
		{model.RoleAdopter, ListOwnedPets, true},
		{model.RoleShelter, ListOwnedPets, false},

		{model.RoleAdopter, RequestAdoption, true},
		{model.RoleOwner, RequestAdoption, false},
		{model.RoleShelter, RequestAdoption, false},
		{model.RoleAdmin, RequestAdoption, false},

		{model.RoleAdopter, BookService, true},
		{model.RoleOwner, BookService, true},
		{model.RoleShelter, BookService, false},
		{model.RoleAdmin, BookService, false},

		{model.RoleShelter, Checkout, true},
		{model.RoleAdmin, Administer, true},
		{model.RoleOwner, Administer, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.cap), func(t *testing.T) {
			require.Equal(t, tt.want, Can(&model.User{ID: 1, Role: tt.role}, tt.cap))
		})
	}
}

func TestNilUser(t *testing.T) {
	require.False(t, Can(nil, Checkout))
	require.False(t, CanResolve(nil, 1))
}

func TestCanResolve(t *testing.T) {
	shelter := &model.User{ID: 5, Role: model.RoleShelter}
	other := &model.User{ID: 6, Role: model.RoleShelter}
	admin := &model.User{ID: 9, Role: model.RoleAdmin}

	require.True(t, CanResolve(shelter, 5))
	require.False(t, CanResolve(other, 5))
	require.True(t, CanResolve(admin, 5))
}

func TestCapabilities(t *testing.T) {
	require.Equal(t, []Capability{ListOwnedPets, RequestAdoption, BookService, Checkout}, Capabilities(model.RoleAdopter))
	require.Empty(t, Capabilities(model.Role("guest")))
}

func TestParseRole(t *testing.T) {
	r, err := model.ParseRole("shelter")
	require.NoError(t, err)
	require.Equal(t, model.RoleShelter, r)

	_, err = model.ParseRole("superuser")
	require.Error(t, err)
}

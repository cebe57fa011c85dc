package service

import (
	"context"
	"testing"

	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestShelterPetLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shelter := e.user(t, model.RoleShelter, "Haven")
	other := e.user(t, model.RoleShelter, "Ark")
	owner := e.user(t, model.RoleOwner, "Omar")

	_, err := e.catalog.AddShelterPet(ctx, owner, PetInput{Name: "Rex", Category: "dog"})
	require.ErrorIs(t, err, ErrForbidden)
	_, err = e.catalog.AddShelterPet(ctx, shelter, PetInput{Name: "Rex", Category: "dog", AdoptionFee: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, ErrValidation)

	pet, err := e.catalog.AddShelterPet(ctx, shelter, PetInput{Name: "Rex", Category: "dog"})
	require.NoError(t, err)
	require.False(t, pet.IsAvailable)

	browse, err := e.catalog.Browse(ctx)
	require.NoError(t, err)
	require.Empty(t, browse.Pets)

	_, err = e.catalog.SetPetAvailability(ctx, other, pet.ID, true)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = e.catalog.SetPetAvailability(ctx, shelter, pet.ID, true)
	require.NoError(t, err)

	browse, err = e.catalog.Browse(ctx)
	require.NoError(t, err)
	require.Len(t, browse.Pets, 1)

	mine, err := e.catalog.ListShelterPets(ctx, shelter)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	require.ErrorIs(t, e.catalog.DeleteShelterPet(ctx, other, pet.ID), ErrNotFound)
	require.NoError(t, e.catalog.DeleteShelterPet(ctx, shelter, pet.ID))
	_, err = e.catalog.GetPet(ctx, pet.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOwnedPetListing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, model.RoleOwner, "Omar")
	other := e.user(t, model.RoleOwner, "Olga")
	shelter := e.user(t, model.RoleShelter, "Haven")

	_, err := e.catalog.AddOwnedPet(ctx, shelter, PetInput{Name: "Rex", Category: "dog"})
	require.ErrorIs(t, err, ErrForbidden)

	o := e.ownedPet(t, owner, "Mittens", false)
	require.True(t, o.Active())
	require.False(t, o.IsListedForAdoption)

	u, err := e.store.Users.FindByID(ctx, owner.ID)
	require.NoError(t, err)
	require.True(t, u.HasPet)

	_, err = e.catalog.SetOwnedPetListing(ctx, other, o.ID, true)
	require.ErrorIs(t, err, ErrNotFound)

	listed, err := e.catalog.SetOwnedPetListing(ctx, owner, o.ID, true)
	require.NoError(t, err)
	require.True(t, listed.IsListedForAdoption)

	// setting the same state again is not an error
	listed, err = e.catalog.SetOwnedPetListing(ctx, owner, o.ID, true)
	require.NoError(t, err)
	require.True(t, listed.IsListedForAdoption)
}

func TestUpdateShelterPet(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shelter := e.user(t, model.RoleShelter, "Haven")
	other := e.user(t, model.RoleShelter, "Ark")
	adopter := e.user(t, model.RoleAdopter, "Asha")
	pet := e.listedShelterPet(t, shelter, "Rex", "500")

	img := "https://img.example/rex.jpg"
	edit := PetInput{Name: " Rex II ", Category: "dog", Description: "house trained", ImageURL: &img, AdoptionFee: decimal.RequireFromString("750.5")}

	_, err := e.catalog.UpdateShelterPet(ctx, other, pet.ID, edit)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = e.catalog.UpdateShelterPet(ctx, adopter, pet.ID, edit)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = e.catalog.UpdateShelterPet(ctx, shelter, pet.ID, PetInput{Name: "", Category: "dog"})
	require.ErrorIs(t, err, ErrValidation)

	got, err := e.catalog.UpdateShelterPet(ctx, shelter, pet.ID, edit)
	require.NoError(t, err)
	require.Equal(t, "Rex II", got.Name)
	require.Equal(t, "house trained", got.Description)
	require.Equal(t, "750.50", got.AdoptionFee.StringFixed(2))
	require.NotNil(t, got.ImageURL)
	require.True(t, got.IsAvailable)
	require.Equal(t, shelter.ID, got.AddedByID)

	// clearing optional fields is an edit too
	got, err = e.catalog.UpdateShelterPet(ctx, shelter, pet.ID, PetInput{Name: "Rex II", Category: "dog"})
	require.NoError(t, err)
	require.Nil(t, got.ImageURL)
	require.True(t, got.AdoptionFee.IsZero())

	req, err := e.adoption.CreateRequest(ctx, adopter, Target{PetID: &pet.ID}, "")
	require.NoError(t, err)
	_, err = e.adoption.Approve(ctx, shelter, req.ID)
	require.NoError(t, err)

	_, err = e.catalog.UpdateShelterPet(ctx, shelter, pet.ID, edit)
	require.ErrorIs(t, err, ErrInvalidStateTransition)
}

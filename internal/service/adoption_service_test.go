package service

import (
	"context"
	"testing"
	"time"

	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/stretchr/testify/require"
)

func TestShelterAdoptionWithoutFee(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shelter := e.user(t, model.RoleShelter, "Haven")
	adopter := e.user(t, model.RoleAdopter, "Asha")
	pet := e.listedShelterPet(t, shelter, "Bruno", "0")

	req, err := e.adoption.CreateRequest(ctx, adopter, Target{PetID: &pet.ID}, "  we have a garden ")
	require.NoError(t, err)
	require.Equal(t, model.AdoptionStatusPending, req.Status)
	require.Equal(t, "we have a garden", req.Message)

	approved, err := e.adoption.Approve(ctx, shelter, req.ID)
	require.NoError(t, err)
	require.Equal(t, model.AdoptionStatusApproved, approved.Status)
	require.Nil(t, approved.PendingKey)
	require.NotNil(t, approved.ResolvedByID)
	require.Equal(t, shelter.ID, *approved.ResolvedByID)

	stored, err := e.store.Pets.FindByID(ctx, pet.ID)
	require.NoError(t, err)
	require.False(t, stored.IsAvailable)

	owned, err := e.store.OwnedPets.FindActiveByPet(ctx, pet.ID)
	require.NoError(t, err)
	require.Equal(t, adopter.ID, owned.OwnerID)

	u, err := e.store.Users.FindByID(ctx, adopter.ID)
	require.NoError(t, err)
	require.True(t, u.HasPet)

	_, err = e.adoption.Approve(ctx, shelter, req.ID)
	require.ErrorIs(t, err, ErrInvalidStateTransition)
	_, err = e.adoption.Decline(ctx, shelter, req.ID)
	require.ErrorIs(t, err, ErrInvalidStateTransition)

	_, err = e.catalog.SetPetAvailability(ctx, shelter, pet.ID, true)
	require.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestDuplicatePendingRequest(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shelter := e.user(t, model.RoleShelter, "Haven")
	adopter := e.user(t, model.RoleAdopter, "Asha")
	pet := e.listedShelterPet(t, shelter, "Bruno", "0")

	first, err := e.adoption.CreateRequest(ctx, adopter, Target{PetID: &pet.ID}, "")
	require.NoError(t, err)
	_, err = e.adoption.CreateRequest(ctx, adopter, Target{PetID: &pet.ID}, "again")
	require.ErrorIs(t, err, ErrDuplicateRequest)

	// the unique pending key backs up the application check
	key := model.PendingKeyFor(adopter.ID, &pet.ID, nil)
	err = e.store.Adoptions.Create(ctx, &model.AdoptionRequest{
		AdopterID:  adopter.ID,
		PetID:      &pet.ID,
		Status:     model.AdoptionStatusPending,
		PendingKey: &key,
	})
	require.Error(t, err)

	// once declined, the adopter may ask again
	_, err = e.adoption.Decline(ctx, shelter, first.ID)
	require.NoError(t, err)
	_, err = e.adoption.CreateRequest(ctx, adopter, Target{PetID: &pet.ID}, "please reconsider")
	require.NoError(t, err)
}

func TestCreateRequestValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shelter := e.user(t, model.RoleShelter, "Haven")
	adopter := e.user(t, model.RoleAdopter, "Asha")
	owner := e.user(t, model.RoleOwner, "Omar")
	listed := e.listedShelterPet(t, shelter, "Bruno", "0")
	hidden, err := e.catalog.AddShelterPet(ctx, shelter, PetInput{Name: "Shy", Category: "cat"})
	require.NoError(t, err)
	mine := e.ownedPet(t, adopter, "Mittens", true)

	tests := []struct {
		name   string
		actor  *model.User
		target Target
		want   error
	}{
		{"owner cannot request", owner, Target{PetID: &listed.ID}, ErrForbidden},
		{"no target", adopter, Target{}, ErrValidation},
		{"both targets", adopter, Target{PetID: &listed.ID, OwnedPetID: &mine.ID}, ErrValidation},
		{"unlisted pet", adopter, Target{PetID: &hidden.ID}, ErrNotFound},
		{"missing pet", adopter, Target{PetID: u64(9999)}, ErrNotFound},
		{"own pet", adopter, Target{OwnedPetID: &mine.ID}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.adoption.CreateRequest(ctx, tt.actor, tt.target, "")
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestResolveAuthorization(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shelter := e.user(t, model.RoleShelter, "Haven")
	otherShelter := e.user(t, model.RoleShelter, "Ark")
	adopter := e.user(t, model.RoleAdopter, "Asha")
	admin := e.user(t, model.RoleAdmin, "Root")
	pet := e.listedShelterPet(t, shelter, "Bruno", "0")

	req, err := e.adoption.CreateRequest(ctx, adopter, Target{PetID: &pet.ID}, "")
	require.NoError(t, err)

	_, err = e.adoption.Approve(ctx, otherShelter, req.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = e.adoption.Approve(ctx, adopter, req.ID)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = e.adoption.Get(ctx, otherShelter, req.ID)
	require.ErrorIs(t, err, ErrNotFound)

	incoming, err := e.adoption.ListIncoming(ctx, shelter)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	incoming, err = e.adoption.ListIncoming(ctx, otherShelter)
	require.NoError(t, err)
	require.Empty(t, incoming)

	declined, err := e.adoption.Decline(ctx, admin, req.ID)
	require.NoError(t, err)
	require.Equal(t, model.AdoptionStatusDeclined, declined.Status)
}

func TestOwnedPetTransfer(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, model.RoleOwner, "Omar")
	adopter := e.user(t, model.RoleAdopter, "Asha")
	listing := e.ownedPet(t, owner, "Mittens", true)

	browse, err := e.catalog.Browse(ctx)
	require.NoError(t, err)
	require.Len(t, browse.OwnedPets, 1)

	req, err := e.adoption.CreateRequest(ctx, adopter, Target{OwnedPetID: &listing.ID}, "")
	require.NoError(t, err)
	_, err = e.adoption.Approve(ctx, owner, req.ID)
	require.NoError(t, err)

	old, err := e.store.OwnedPets.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	require.False(t, old.Active())
	require.False(t, old.IsListedForAdoption)
	require.Nil(t, old.ActivePetID)

	current, err := e.store.OwnedPets.FindActiveByPet(ctx, listing.PetID)
	require.NoError(t, err)
	require.Equal(t, adopter.ID, current.OwnerID)
	require.NotEqual(t, listing.ID, current.ID)

	prev, err := e.store.Users.FindByID(ctx, owner.ID)
	require.NoError(t, err)
	require.False(t, prev.HasPet)

	mine, err := e.catalog.ListOwnedPets(ctx, owner)
	require.NoError(t, err)
	require.Empty(t, mine)

	// the retired listing can no longer be relisted by its old owner
	_, err = e.catalog.SetOwnedPetListing(ctx, owner, listing.ID, true)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestApproveDeclinesCompetingRequests(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shelter := e.user(t, model.RoleShelter, "Haven")
	asha := e.user(t, model.RoleAdopter, "Asha")
	ben := e.user(t, model.RoleAdopter, "Ben")
	pet := e.listedShelterPet(t, shelter, "Bruno", "0")

	win, err := e.adoption.CreateRequest(ctx, asha, Target{PetID: &pet.ID}, "")
	require.NoError(t, err)
	lose, err := e.adoption.CreateRequest(ctx, ben, Target{PetID: &pet.ID}, "")
	require.NoError(t, err)

	_, err = e.adoption.Approve(ctx, shelter, win.ID)
	require.NoError(t, err)

	got, err := e.adoption.Get(ctx, ben, lose.ID)
	require.NoError(t, err)
	require.Equal(t, model.AdoptionStatusDeclined, got.Status)

	notes, unread, err := e.notify.List(ctx, ben.ID, true, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, unread)
	require.Equal(t, "adoption_declined", notes[0].Type)
}

func TestApproveRequiresPaidFee(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shelter := e.user(t, model.RoleShelter, "Haven")
	adopter := e.user(t, model.RoleAdopter, "Asha")
	pet := e.listedShelterPet(t, shelter, "Bruno", "1000")

	req, err := e.adoption.CreateRequest(ctx, adopter, Target{PetID: &pet.ID}, "")
	require.NoError(t, err)
	_, err = e.adoption.Approve(ctx, shelter, req.ID)
	require.ErrorIs(t, err, ErrInvalidStateTransition)

	p, err := e.payments.CreateAdoptionPayment(ctx, adopter, req.ID)
	require.NoError(t, err)
	require.Equal(t, model.PaymentForAdoption, p.Kind)
	require.Equal(t, "1000.00", p.Amount.StringFixed(2))
	require.NotNil(t, p.ReceiverID)
	require.Equal(t, shelter.ID, *p.ReceiverID)

	again, err := e.payments.CreateAdoptionPayment(ctx, adopter, req.ID)
	require.NoError(t, err)
	require.Equal(t, p.ID, again.ID)

	e.pay(t, adopter, p.ID)

	_, err = e.payments.CreateAdoptionPayment(ctx, adopter, req.ID)
	require.ErrorIs(t, err, ErrInvalidStateTransition)

	approved, err := e.adoption.Approve(ctx, shelter, req.ID)
	require.NoError(t, err)
	require.Equal(t, model.AdoptionStatusApproved, approved.Status)
	require.NotNil(t, approved.FeePaidAt)

	bal, err := e.earnings.Balance(ctx, shelter)
	require.NoError(t, err)
	require.Equal(t, "1000.00", bal.StringFixed(2))
	e.dispatch.Wait()
}

func TestDeclineFailsOpenFeePayment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shelter := e.user(t, model.RoleShelter, "Haven")
	adopter := e.user(t, model.RoleAdopter, "Asha")
	pet := e.listedShelterPet(t, shelter, "Bruno", "1000")

	req, err := e.adoption.CreateRequest(ctx, adopter, Target{PetID: &pet.ID}, "")
	require.NoError(t, err)
	p, err := e.payments.CreateAdoptionPayment(ctx, adopter, req.ID)
	require.NoError(t, err)
	p, err = e.payments.InitiateGatewayOrder(ctx, adopter, p.ID)
	require.NoError(t, err)

	_, err = e.adoption.Decline(ctx, shelter, req.ID)
	require.NoError(t, err)

	settled, err := e.payments.VerifyAndSettle(ctx, adopter, SettleInput{
		PaymentID:        p.ID,
		GatewayPaymentID: "pay_late",
		GatewayOrderID:   p.GatewayOrderID,
		Signature:        e.gw.Sign(p.GatewayOrderID, "pay_late"),
	})
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusFailed, settled.Status)

	got, err := e.store.Adoptions.FindByID(ctx, req.ID)
	require.NoError(t, err)
	require.Nil(t, got.FeePaidAt)

	bal, err := e.earnings.Balance(ctx, shelter)
	require.NoError(t, err)
	require.True(t, bal.IsZero())
}

func TestSettleAfterConcurrentDeclineSkipsCredit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shelter := e.user(t, model.RoleShelter, "Haven")
	adopter := e.user(t, model.RoleAdopter, "Asha")
	pet := e.listedShelterPet(t, shelter, "Bruno", "1000")

	req, err := e.adoption.CreateRequest(ctx, adopter, Target{PetID: &pet.ID}, "")
	require.NoError(t, err)
	p, err := e.payments.CreateAdoptionPayment(ctx, adopter, req.ID)
	require.NoError(t, err)

	// the request is resolved without touching its payment
	n, err := e.store.Adoptions.Resolve(ctx, req.ID, model.AdoptionStatusDeclined, shelter.ID, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	e.pay(t, adopter, p.ID)

	got, err := e.store.Adoptions.FindByID(ctx, req.ID)
	require.NoError(t, err)
	require.Nil(t, got.FeePaidAt)

	bal, err := e.earnings.Balance(ctx, shelter)
	require.NoError(t, err)
	require.True(t, bal.IsZero())

	notes, _, err := e.notify.List(ctx, shelter.ID, false, 20)
	require.NoError(t, err)
	for _, n := range notes {
		require.NotEqual(t, "payment_received", n.Type)
	}
	e.dispatch.Wait()
}

func TestAutoDeclineFailsCompetingFeePayment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shelter := e.user(t, model.RoleShelter, "Haven")
	asha := e.user(t, model.RoleAdopter, "Asha")
	ben := e.user(t, model.RoleAdopter, "Ben")
	pet := e.listedShelterPet(t, shelter, "Bruno", "1000")

	win, err := e.adoption.CreateRequest(ctx, asha, Target{PetID: &pet.ID}, "")
	require.NoError(t, err)
	lose, err := e.adoption.CreateRequest(ctx, ben, Target{PetID: &pet.ID}, "")
	require.NoError(t, err)

	winPay, err := e.payments.CreateAdoptionPayment(ctx, asha, win.ID)
	require.NoError(t, err)
	losePay, err := e.payments.CreateAdoptionPayment(ctx, ben, lose.ID)
	require.NoError(t, err)
	e.pay(t, asha, winPay.ID)

	_, err = e.adoption.Approve(ctx, shelter, win.ID)
	require.NoError(t, err)

	got, err := e.payments.Get(ctx, ben, losePay.ID)
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusFailed, got.Status)

	bal, err := e.earnings.Balance(ctx, shelter)
	require.NoError(t, err)
	require.Equal(t, "1000.00", bal.StringFixed(2))
	e.dispatch.Wait()
}

// A request resolved by another caller after Approve read it must not be
// approved; the pet stays with the shelter.
func TestApproveLosesRaceToConcurrentDecline(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shelter := e.user(t, model.RoleShelter, "Haven")
	adopter := e.user(t, model.RoleAdopter, "Asha")
	pet := e.listedShelterPet(t, shelter, "Bruno", "0")

	req, err := e.adoption.CreateRequest(ctx, adopter, Target{PetID: &pet.ID}, "")
	require.NoError(t, err)

	other := e.adoption
	racing := &adoptionService{store: e.store, notify: e.notify, metrics: e.metrics}
	racing.now = func() time.Time {
		// runs after the status check, before the transaction
		_, derr := other.Decline(ctx, shelter, req.ID)
		require.NoError(t, derr)
		return time.Now()
	}

	_, err = racing.Approve(ctx, shelter, req.ID)
	require.ErrorIs(t, err, ErrInvalidStateTransition)
	require.Contains(t, err.Error(), "no longer pending")

	got, err := e.store.Adoptions.FindByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, model.AdoptionStatusDeclined, got.Status)

	stored, err := e.store.Pets.FindByID(ctx, pet.ID)
	require.NoError(t, err)
	require.True(t, stored.IsAvailable)

	_, err = e.store.OwnedPets.FindActiveByPet(ctx, pet.ID)
	require.Error(t, err)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shinyyama/petverse-backend/internal/authz"
	"github.com/shinyyama/petverse-backend/internal/metrics"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/reqctx"
	"github.com/shinyyama/petverse-backend/internal/repository"
	"gorm.io/gorm"
)

// Target names what an adoption request is for: exactly one of a shelter Pet
// or an owner's OwnedPet.
type Target struct {
	PetID      *uint64
	OwnedPetID *uint64
}

func (t Target) validate() error {
	if (t.PetID == nil) == (t.OwnedPetID == nil) {
		return invalid("exactly one of pet or owned pet is required")
	}
	return nil
}

type AdoptionService interface {
	CreateRequest(ctx context.Context, adopter *model.User, target Target, message string) (*model.AdoptionRequest, error)
	Approve(ctx context.Context, actor *model.User, requestID uint64) (*model.AdoptionRequest, error)
	Decline(ctx context.Context, actor *model.User, requestID uint64) (*model.AdoptionRequest, error)
	Get(ctx context.Context, actor *model.User, requestID uint64) (*model.AdoptionRequest, error)
	ListMine(ctx context.Context, adopter *model.User) ([]model.AdoptionRequest, error)
	ListIncoming(ctx context.Context, actor *model.User) ([]model.AdoptionRequest, error)
}

type adoptionService struct {
	store   *repository.Store
	notify  NotificationService
	metrics *metrics.Recorder
	now     func() time.Time
}

func NewAdoptionService(store *repository.Store, notify NotificationService, rec *metrics.Recorder) AdoptionService {
	return &adoptionService{store: store, notify: notify, metrics: rec, now: time.Now}
}

// adoptionParty resolves the counterparty of a request (the shelter that
// added the pet, or the owner holding the owned pet) and the pet's fee.
type adoptionParty struct {
	counterpartyID uint64
	pet            *model.Pet
}

func resolveParty(ctx context.Context, store *repository.Store, req *model.AdoptionRequest) (*adoptionParty, error) {
	if req.PetID != nil {
		p, err := store.Pets.FindByID(ctx, *req.PetID)
		if err != nil {
			return nil, notFoundOr(err)
		}
		return &adoptionParty{counterpartyID: p.AddedByID, pet: p}, nil
	}
	if req.OwnedPetID != nil {
		o, err := store.OwnedPets.FindByID(ctx, *req.OwnedPetID)
		if err != nil {
			return nil, notFoundOr(err)
		}
		if o.Pet == nil {
			return nil, ErrNotFound
		}
		return &adoptionParty{counterpartyID: o.OwnerID, pet: o.Pet}, nil
	}
	return nil, invalid("request has no target")
}

func (s *adoptionService) CreateRequest(ctx context.Context, adopter *model.User, target Target, message string) (*model.AdoptionRequest, error) {
	if !authz.Can(adopter, authz.RequestAdoption) {
		return nil, ErrForbidden
	}
	if err := target.validate(); err != nil {
		return nil, err
	}

	var counterpartyID uint64
	if target.PetID != nil {
		p, err := s.store.Pets.FindByID(ctx, *target.PetID)
		if err != nil {
			return nil, notFoundOr(err)
		}
		if !p.IsAvailable {
			return nil, ErrNotFound
		}
		counterpartyID = p.AddedByID
	} else {
		o, err := s.store.OwnedPets.FindByID(ctx, *target.OwnedPetID)
		if err != nil {
			return nil, notFoundOr(err)
		}
		if !o.Active() || !o.IsListedForAdoption {
			return nil, ErrNotFound
		}
		if o.OwnerID == adopter.ID {
			return nil, invalid("cannot request adoption of your own pet")
		}
		counterpartyID = o.OwnerID
	}

	if _, err := s.store.Adoptions.FindPending(ctx, adopter.ID, target.PetID, target.OwnedPetID); err == nil {
		return nil, ErrDuplicateRequest
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	key := model.PendingKeyFor(adopter.ID, target.PetID, target.OwnedPetID)
	req := &model.AdoptionRequest{
		AdopterID:  adopter.ID,
		PetID:      target.PetID,
		OwnedPetID: target.OwnedPetID,
		Message:    strings.TrimSpace(message),
		Status:     model.AdoptionStatusPending,
		PendingKey: &key,
	}
	if err := s.store.Adoptions.Create(ctx, req); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateRequest
		}
		return nil, err
	}

	log.Printf("[adoption] rid=%s actor=%d stage=requested req=%d", reqctx.RID(ctx), adopter.ID, req.ID)
	s.metrics.Adoption(string(model.AdoptionStatusPending))
	s.notify.Notify(ctx, counterpartyID, "adoption_requested", "New adoption request",
		fmt.Sprintf("%s would like to adopt your pet.", adopter.Name), NotificationRef{AdoptionRequestID: u64(req.ID)})
	return req, nil
}

// authorize loads a request the actor may resolve. Non-participants get
// ErrNotFound so the request's existence is not revealed.
func (s *adoptionService) authorize(ctx context.Context, actor *model.User, requestID uint64) (*model.AdoptionRequest, *adoptionParty, error) {
	if actor == nil {
		return nil, nil, ErrForbidden
	}
	req, err := s.store.Adoptions.FindByID(ctx, requestID)
	if err != nil {
		return nil, nil, notFoundOr(err)
	}
	party, err := resolveParty(ctx, s.store, req)
	if err != nil {
		return nil, nil, err
	}
	if !authz.CanResolve(actor, party.counterpartyID) {
		if actor.ID == req.AdopterID {
			return nil, nil, ErrForbidden
		}
		return nil, nil, ErrNotFound
	}
	return req, party, nil
}

func (s *adoptionService) Approve(ctx context.Context, actor *model.User, requestID uint64) (*model.AdoptionRequest, error) {
	req, party, err := s.authorize(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != model.AdoptionStatusPending {
		return nil, badTransition("request is already %s", req.Status)
	}
	if party.pet.HasFee() && req.FeePaidAt == nil {
		return nil, badTransition("adoption fee has not been paid")
	}

	now := s.now()
	var (
		declined      []uint64
		previousOwner uint64
	)
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		n, err := tx.Adoptions.Resolve(ctx, req.ID, model.AdoptionStatusApproved, actor.ID, now)
		if err != nil {
			return err
		}
		if n == 0 {
			return badTransition("request is no longer pending")
		}

		petID := party.pet.ID
		if req.PetID != nil {
			n, err := tx.Pets.MarkAdopted(ctx, petID)
			if err != nil {
				return err
			}
			if n == 0 {
				return badTransition("pet is no longer available")
			}
		} else {
			n, err := tx.OwnedPets.Retire(ctx, *req.OwnedPetID, now)
			if err != nil {
				return err
			}
			if n == 0 {
				return badTransition("pet is no longer listed")
			}
			previousOwner = party.counterpartyID
		}

		if err := tx.OwnedPets.Create(ctx, &model.OwnedPet{
			OwnerID:    req.AdopterID,
			PetID:      petID,
			AcquiredAt: now,
		}); err != nil {
			return err
		}
		if err := tx.Users.RefreshHasPet(ctx, req.AdopterID); err != nil {
			return err
		}
		if previousOwner != 0 {
			if err := tx.Users.RefreshHasPet(ctx, previousOwner); err != nil {
				return err
			}
		}

		declined, err = tx.Adoptions.DeclineCompeting(ctx, req.ID, req.PetID, req.OwnedPetID, actor.ID, now)
		if err != nil {
			return err
		}
		_, err = tx.Payments.FailPendingFor(ctx, model.PaymentForAdoption, declined, "adoption request declined", now)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[adoption] rid=%s actor=%d stage=approved req=%d pet=%d auto_declined=%d", reqctx.RID(ctx), actor.ID, req.ID, party.pet.ID, len(declined))
	s.metrics.Adoption(string(model.AdoptionStatusApproved))
	s.notify.Notify(ctx, req.AdopterID, "adoption_approved", "Adoption approved",
		fmt.Sprintf("Your request to adopt %s was approved.", party.pet.Name), NotificationRef{AdoptionRequestID: u64(req.ID)})
	for _, id := range declined {
		s.metrics.Adoption(string(model.AdoptionStatusDeclined))
		if other, err := s.store.Adoptions.FindByID(ctx, id); err == nil {
			s.notify.Notify(ctx, other.AdopterID, "adoption_declined", "Adoption request declined",
				fmt.Sprintf("%s has been adopted by someone else.", party.pet.Name), NotificationRef{AdoptionRequestID: u64(id)})
		}
	}
	return s.reload(ctx, req.ID)
}

func (s *adoptionService) Decline(ctx context.Context, actor *model.User, requestID uint64) (*model.AdoptionRequest, error) {
	req, party, err := s.authorize(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		n, err := tx.Adoptions.Resolve(ctx, req.ID, model.AdoptionStatusDeclined, actor.ID, now)
		if err != nil {
			return err
		}
		if n == 0 {
			return badTransition("request is no longer pending")
		}
		_, err = tx.Payments.FailPendingFor(ctx, model.PaymentForAdoption, []uint64{req.ID}, "adoption request declined", now)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[adoption] rid=%s actor=%d stage=declined req=%d", reqctx.RID(ctx), actor.ID, req.ID)
	s.metrics.Adoption(string(model.AdoptionStatusDeclined))
	s.notify.Notify(ctx, req.AdopterID, "adoption_declined", "Adoption request declined",
		fmt.Sprintf("Your request to adopt %s was declined.", party.pet.Name), NotificationRef{AdoptionRequestID: u64(req.ID)})
	return s.reload(ctx, req.ID)
}

func (s *adoptionService) reload(ctx context.Context, id uint64) (*model.AdoptionRequest, error) {
	req, err := s.store.Adoptions.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return req, nil
}

func (s *adoptionService) Get(ctx context.Context, actor *model.User, requestID uint64) (*model.AdoptionRequest, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	req, err := s.store.Adoptions.FindByID(ctx, requestID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if actor.ID == req.AdopterID {
		return req, nil
	}
	party, err := resolveParty(ctx, s.store, req)
	if err != nil {
		return nil, err
	}
	if !authz.CanResolve(actor, party.counterpartyID) {
		return nil, ErrNotFound
	}
	return req, nil
}

func (s *adoptionService) ListMine(ctx context.Context, adopter *model.User) ([]model.AdoptionRequest, error) {
	if adopter == nil {
		return nil, ErrForbidden
	}
	return s.store.Adoptions.ListByAdopter(ctx, adopter.ID)
}

// ListIncoming returns requests the actor is asked to resolve.
func (s *adoptionService) ListIncoming(ctx context.Context, actor *model.User) ([]model.AdoptionRequest, error) {
	switch {
	case authz.Can(actor, authz.Administer):
		return s.store.Adoptions.ListAll(ctx, 0)
	case authz.Can(actor, authz.ManageShelterPets):
		return s.store.Adoptions.ListForShelter(ctx, actor.ID)
	case authz.Can(actor, authz.ListOwnedPets):
		return s.store.Adoptions.ListForOwner(ctx, actor.ID)
	default:
		return nil, ErrForbidden
	}
}

package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/shinyyama/petverse-backend/internal/authz"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/reqctx"
	"github.com/shinyyama/petverse-backend/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PetInput struct {
	Name        string
	Category    string
	Description string
	ImageURL    *string
	AdoptionFee decimal.Decimal
}

func (in PetInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return invalid("category is required")
	}
	if in.AdoptionFee.IsNegative() {
		return invalid("adoption fee cannot be negative")
	}
	return nil
}

func (in PetInput) pet(addedBy uint64) *model.Pet {
	return &model.Pet{
		AddedByID:   addedBy,
		Name:        strings.TrimSpace(in.Name),
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
		ImageURL:    in.ImageURL,
		AdoptionFee: in.AdoptionFee.Round(2),
	}
}

// Listings is what adopters can browse: shelter pets marked available and
// owner pets listed for re-adoption.
type Listings struct {
	Pets      []model.Pet
	OwnedPets []model.OwnedPet
}

type CatalogService interface {
	AddShelterPet(ctx context.Context, actor *model.User, in PetInput) (*model.Pet, error)
	UpdateShelterPet(ctx context.Context, actor *model.User, petID uint64, in PetInput) (*model.Pet, error)
	SetPetAvailability(ctx context.Context, actor *model.User, petID uint64, available bool) (*model.Pet, error)
	DeleteShelterPet(ctx context.Context, actor *model.User, petID uint64) error
	ListShelterPets(ctx context.Context, actor *model.User) ([]model.Pet, error)
	AddOwnedPet(ctx context.Context, actor *model.User, in PetInput) (*model.OwnedPet, error)
	SetOwnedPetListing(ctx context.Context, actor *model.User, ownedPetID uint64, listed bool) (*model.OwnedPet, error)
	ListOwnedPets(ctx context.Context, actor *model.User) ([]model.OwnedPet, error)
	Browse(ctx context.Context) (*Listings, error)
	GetPet(ctx context.Context, id uint64) (*model.Pet, error)
}

type catalogService struct {
	store *repository.Store
	now   func() time.Time
}

func NewCatalogService(store *repository.Store) CatalogService {
	return &catalogService{store: store, now: time.Now}
}

func (s *catalogService) AddShelterPet(ctx context.Context, actor *model.User, in PetInput) (*model.Pet, error) {
	if !authz.Can(actor, authz.ManageShelterPets) {
		return nil, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	// new shelter pets start unlisted
	p := in.pet(actor.ID)
	if err := s.store.Pets.Create(ctx, p); err != nil {
		return nil, err
	}
	log.Printf("[catalog] rid=%s actor=%d stage=pet_added pet=%d", reqctx.RID(ctx), actor.ID, p.ID)
	return p, nil
}

func (s *catalogService) shelterPet(ctx context.Context, actor *model.User, petID uint64) (*model.Pet, error) {
	if !authz.Can(actor, authz.ManageShelterPets) {
		return nil, ErrForbidden
	}
	p, err := s.store.Pets.FindByID(ctx, petID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if p.AddedByID != actor.ID {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *catalogService) adopted(ctx context.Context, petID uint64) (bool, error) {
	_, err := s.store.OwnedPets.FindActiveByPet(ctx, petID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// UpdateShelterPet edits the details of a pet the shelter still holds. Open
// fee payments keep the amount they were created with.
func (s *catalogService) UpdateShelterPet(ctx context.Context, actor *model.User, petID uint64, in PetInput) (*model.Pet, error) {
	p, err := s.shelterPet(ctx, actor, petID)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	taken, err := s.adopted(ctx, petID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, badTransition("adopted pets cannot be edited")
	}
	next := in.pet(actor.ID)
	next.ID = p.ID
	if err := s.store.Pets.UpdateDetails(ctx, next); err != nil {
		return nil, err
	}
	log.Printf("[catalog] rid=%s actor=%d stage=pet_updated pet=%d", reqctx.RID(ctx), actor.ID, p.ID)
	return s.GetPet(ctx, p.ID)
}

func (s *catalogService) SetPetAvailability(ctx context.Context, actor *model.User, petID uint64, available bool) (*model.Pet, error) {
	p, err := s.shelterPet(ctx, actor, petID)
	if err != nil {
		return nil, err
	}
	if available {
		taken, err := s.adopted(ctx, petID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, badTransition("pet has already been adopted")
		}
	}
	if err := s.store.Pets.SetAvailability(ctx, petID, available); err != nil {
		return nil, err
	}
	p.IsAvailable = available
	return p, nil
}

func (s *catalogService) DeleteShelterPet(ctx context.Context, actor *model.User, petID uint64) error {
	if _, err := s.shelterPet(ctx, actor, petID); err != nil {
		return err
	}
	taken, err := s.adopted(ctx, petID)
	if err != nil {
		return err
	}
	if taken {
		return badTransition("adopted pets cannot be deleted")
	}
	return s.store.Pets.Delete(ctx, petID)
}

func (s *catalogService) ListShelterPets(ctx context.Context, actor *model.User) ([]model.Pet, error) {
	if !authz.Can(actor, authz.ManageShelterPets) {
		return nil, ErrForbidden
	}
	return s.store.Pets.ListByAddedBy(ctx, actor.ID)
}

func (s *catalogService) AddOwnedPet(ctx context.Context, actor *model.User, in PetInput) (*model.OwnedPet, error) {
	if !authz.Can(actor, authz.ListOwnedPets) {
		return nil, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	var owned *model.OwnedPet
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		p := in.pet(actor.ID)
		if err := tx.Pets.Create(ctx, p); err != nil {
			return err
		}
		owned = &model.OwnedPet{OwnerID: actor.ID, PetID: p.ID, AcquiredAt: s.now()}
		if err := tx.OwnedPets.Create(ctx, owned); err != nil {
			return err
		}
		owned.Pet = p
		return tx.Users.RefreshHasPet(ctx, actor.ID)
	})
	if err != nil {
		return nil, err
	}
	actor.HasPet = true
	return owned, nil
}

func (s *catalogService) SetOwnedPetListing(ctx context.Context, actor *model.User, ownedPetID uint64, listed bool) (*model.OwnedPet, error) {
	if !authz.Can(actor, authz.ListOwnedPets) {
		return nil, ErrForbidden
	}
	n, err := s.store.OwnedPets.SetListing(ctx, ownedPetID, actor.ID, listed)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// either not ours, retired, or already in the requested state
		o, err := s.store.OwnedPets.FindByID(ctx, ownedPetID)
		if err != nil {
			return nil, notFoundOr(err)
		}
		if o.OwnerID != actor.ID || !o.Active() {
			return nil, ErrNotFound
		}
		return o, nil
	}
	o, err := s.store.OwnedPets.FindByID(ctx, ownedPetID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return o, nil
}

func (s *catalogService) ListOwnedPets(ctx context.Context, actor *model.User) ([]model.OwnedPet, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	return s.store.OwnedPets.ListActiveByOwner(ctx, actor.ID)
}

func (s *catalogService) Browse(ctx context.Context) (*Listings, error) {
	pets, err := s.store.Pets.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	owned, err := s.store.OwnedPets.ListListed(ctx)
	if err != nil {
		return nil, err
	}
	return &Listings{Pets: pets, OwnedPets: owned}, nil
}

func (s *catalogService) GetPet(ctx context.Context, id uint64) (*model.Pet, error) {
	p, err := s.store.Pets.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return p, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shinyyama/petverse-backend/internal/ai"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/repository"
)

type AdvisorService interface {
	Ask(ctx context.Context, actor *model.User, petID uint64, question string) (string, error)
}

type advisorService struct {
	store    *repository.Store
	advisor  ai.Advisor
	currency string
}

func NewAdvisorService(store *repository.Store, advisor ai.Advisor, currency string) AdvisorService {
	return &advisorService{store: store, advisor: advisor, currency: currency}
}

// listed reports whether a pet can currently be adopted, either from its
// shelter or through an owner's listing.
func (s *advisorService) listed(ctx context.Context, p *model.Pet) (bool, error) {
	if p.IsAvailable {
		return true, nil
	}
	o, err := s.store.OwnedPets.FindActiveByPet(ctx, p.ID)
	if err != nil {
		return false, notFoundOr(err)
	}
	return o.IsListedForAdoption, nil
}

func (s *advisorService) Ask(ctx context.Context, actor *model.User, petID uint64, question string) (string, error) {
	if actor == nil {
		return "", ErrForbidden
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", invalid("question is required")
	}
	if utf8.RuneCountInString(question) > 500 {
		return "", invalid("question is too long")
	}
	pet, err := s.store.Pets.FindByID(ctx, petID)
	if err != nil {
		return "", notFoundOr(err)
	}
	ok, err := s.listed(ctx, pet)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotFound
	}
	facts := ai.PetFacts{
		Name:        pet.Name,
		Category:    pet.Category,
		Description: pet.Description,
	}
	if pet.HasFee() {
		facts.AdoptionFee = fmt.Sprintf("%s %s", s.currency, pet.AdoptionFee.StringFixed(2))
	}
	if lister, err := s.store.Users.FindByID(ctx, pet.AddedByID); err == nil {
		facts.ListedBy = lister.Name
	}
	answer, err := s.advisor.Ask(ctx, facts, question)
	if errors.Is(err, ai.ErrNotConfigured) {
		return "", ErrUnavailable
	}
	return answer, err
}

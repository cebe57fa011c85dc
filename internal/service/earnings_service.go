package service

import (
	"context"
	"errors"

	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EarningsService exposes the adoption fees credited to shelters and owners.
type EarningsService interface {
	Balance(ctx context.Context, user *model.User) (decimal.Decimal, error)
	Withdraw(ctx context.Context, user *model.User, amount decimal.Decimal) (decimal.Decimal, error)
}

type earningsService struct {
	repo repository.BalanceRepository
}

func NewEarningsService(repo repository.BalanceRepository) EarningsService {
	return &earningsService{repo: repo}
}

func (s *earningsService) Balance(ctx context.Context, user *model.User) (decimal.Decimal, error) {
	b, err := s.repo.Get(ctx, user.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Balance, nil
}

func (s *earningsService) Withdraw(ctx context.Context, user *model.User, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, invalid("amount must be positive")
	}
	if err := s.repo.Debit(ctx, user.ID, amount.Round(2)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrInsufficientBalance
		}
		return decimal.Zero, err
	}
	return s.Balance(ctx, user)
}

package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrDBNotReady = errors.New("database not initialized")

// Store bundles the repositories over one handle so a service can run several
// writes inside a single transaction.
type Store struct {
	db *gorm.DB

	Users         UserRepository
	Pets          PetRepository
	OwnedPets     OwnedPetRepository
	Adoptions     AdoptionRepository
	CareServices  CareServiceRepository
	Appointments  AppointmentRepository
	Payments      PaymentRepository
	Chats         ChatRepository
	Shop          ShopRepository
	Notifications NotificationRepository
	Balances      BalanceRepository
	News          NewsRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewUserRepository(db),
		Pets:          NewPetRepository(db),
		OwnedPets:     NewOwnedPetRepository(db),
		Adoptions:     NewAdoptionRepository(db),
		CareServices:  NewCareServiceRepository(db),
		Appointments:  NewAppointmentRepository(db),
		Payments:      NewPaymentRepository(db),
		Chats:         NewChatRepository(db),
		Shop:          NewShopRepository(db),
		Notifications: NewNotificationRepository(db),
		Balances:      NewBalanceRepository(db),
		News:          NewNewsRepository(db),
	}
}

// Transaction runs fn with a Store bound to one database transaction. fn must
// use only the Store it receives.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	if s.db == nil {
		return ErrDBNotReady
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return ErrDBNotReady
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

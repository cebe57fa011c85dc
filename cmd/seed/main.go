package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shinyyama/petverse-backend/internal/config"
	"github.com/shinyyama/petverse-backend/internal/db"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/repository"
	"github.com/shinyyama/petverse-backend/internal/service"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedPet struct {
	Name        string
	Category    string
	Description string
	Fee         string
}

type seedProduct struct {
	Category string
	Name     string
	Price    string
	Stock    int
}

type seedService struct {
	Category string
	Name     string
	Price    string
	Minutes  int
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	store := repository.NewStore(gdb)

	canSeed, err := shouldSeed(ctx, store)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("users already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	users := service.NewUserService(store)
	catalog := service.NewCatalogService(store)
	notify := service.NewNotificationService(store.Notifications)
	shop := service.NewShopService(store, notify, cfg.Currency, nil)
	payments := service.NewPaymentService(store, nil, notify, service.PaymentConfig{Currency: cfg.Currency})
	bookings := service.NewBookingService(store, payments, notify, cfg.Location(), nil)

	admin, err := seedAdmin(ctx, store)
	if err != nil {
		return err
	}
	shelter, err := users.Register(ctx, service.RegisterInput{FirebaseUID: "seed-shelter", Email: "shelter@petverse.local", Name: "Happy Paws Shelter", Role: "shelter"})
	if err != nil {
		return fmt.Errorf("register shelter: %w", err)
	}
	owner, err := users.Register(ctx, service.RegisterInput{FirebaseUID: "seed-owner", Email: "owner@petverse.local", Name: "Priya Owner", Role: "owner"})
	if err != nil {
		return fmt.Errorf("register owner: %w", err)
	}
	if _, err := users.Register(ctx, service.RegisterInput{FirebaseUID: "seed-adopter", Email: "adopter@petverse.local", Name: "Arjun Adopter", Role: "adopter"}); err != nil {
		return fmt.Errorf("register adopter: %w", err)
	}

	for idx, sp := range shelterPets() {
		img := picsumURL(sp.Category, idx+1)
		p, err := catalog.AddShelterPet(ctx, shelter, service.PetInput{
			Name:        sp.Name,
			Category:    sp.Category,
			Description: sp.Description,
			ImageURL:    &img,
			AdoptionFee: decimal.RequireFromString(sp.Fee),
		})
		if err != nil {
			return fmt.Errorf("add pet %q: %w", sp.Name, err)
		}
		if _, err := catalog.SetPetAvailability(ctx, shelter, p.ID, true); err != nil {
			return fmt.Errorf("list pet %q: %w", sp.Name, err)
		}
	}

	owned, err := catalog.AddOwnedPet(ctx, owner, service.PetInput{
		Name:        "Bruno",
		Category:    "dog",
		Description: "Friendly beagle, vaccinated, good with kids.",
		AdoptionFee: decimal.RequireFromString("1500"),
	})
	if err != nil {
		return fmt.Errorf("add owned pet: %w", err)
	}
	if _, err := catalog.SetOwnedPetListing(ctx, owner, owned.ID, true); err != nil {
		return fmt.Errorf("list owned pet: %w", err)
	}

	for _, s := range careServices() {
		if _, err := bookings.CreateService(ctx, admin, service.ServiceInput{
			Category:        s.Category,
			Name:            s.Name,
			Description:     fmt.Sprintf("%s by certified staff.", s.Name),
			Price:           decimal.RequireFromString(s.Price),
			DurationMinutes: s.Minutes,
		}); err != nil {
			return fmt.Errorf("create service %q: %w", s.Name, err)
		}
	}

	products := shopProducts()
	for _, p := range products {
		if _, err := shop.CreateProduct(ctx, admin, service.ProductInput{
			Category:    p.Category,
			Name:        p.Name,
			Description: fmt.Sprintf("%s (%s).", p.Name, strings.ToLower(p.Category)),
			Price:       decimal.RequireFromString(p.Price),
			Stock:       p.Stock,
		}); err != nil {
			return fmt.Errorf("create product %q: %w", p.Name, err)
		}
	}

	news := service.NewNewsService(store.News)
	headlines := []service.NewsInput{
		{Title: "Weekend adoption drive", Content: "Meet our shelter pets this Sunday from 10am."},
		{Title: "Free vaccination camp", Content: "Bring your pet for a free checkup and rabies shot."},
	}
	for _, n := range headlines {
		if _, err := news.Publish(ctx, admin, n); err != nil {
			return fmt.Errorf("publish news %q: %w", n.Title, err)
		}
	}

	log.Printf("seeded 4 users, %d shelter pets, 1 owned pet, %d services, %d products, %d news items",
		len(shelterPets()), len(careServices()), len(products), len(headlines))
	return nil
}

func seedAdmin(ctx context.Context, store *repository.Store) (*model.User, error) {
	const uid = "seed-admin"
	u, err := store.Users.FindByFirebaseUID(ctx, uid)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	id := uid
	u = &model.User{FirebaseUID: &id, Email: "admin@petverse.local", Name: "PetVerse Admin", Role: model.RoleAdmin}
	if err := store.Users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return u, nil
}

func shouldSeed(ctx context.Context, store *repository.Store) (bool, error) {
	_, total, err := store.Users.List(ctx, 1, 0)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if total == 0 {
		return true, nil
	}
	return strings.EqualFold(os.Getenv("FORCE_SEED"), "true"), nil
}

func shelterPets() []seedPet {
	return []seedPet{
		{Name: "Luna", Category: "cat", Description: "Calm indoor cat, litter trained.", Fee: "1000"},
		{Name: "Rocky", Category: "dog", Description: "Energetic labrador mix, loves fetch.", Fee: "2500"},
		{Name: "Kiwi", Category: "bird", Description: "Chatty budgie with cage included.", Fee: "0"},
		{Name: "Coco", Category: "rabbit", Description: "Gentle lop, eats hay and greens.", Fee: "800"},
	}
}

func careServices() []seedService {
	return []seedService{
		{Category: "Grooming", Name: "Full Grooming", Price: "500", Minutes: 60},
		{Category: "Grooming", Name: "Nail Trim", Price: "150", Minutes: 15},
		{Category: "Veterinary", Name: "General Checkup", Price: "700", Minutes: 30},
		{Category: "Training", Name: "Obedience Session", Price: "900", Minutes: 45},
	}
}

func shopProducts() []seedProduct {
	return []seedProduct{
		{Category: "Food", Name: "Grain-free Dog Food 3kg", Price: "1299.00", Stock: 40},
		{Category: "Food", Name: "Salmon Cat Treats", Price: "249.99", Stock: 100},
		{Category: "Accessories", Name: "Nylon Leash", Price: "199.99", Stock: 25},
		{Category: "Accessories", Name: "Padded Collar M", Price: "349.00", Stock: 30},
		{Category: "Toys", Name: "Rope Toy 3-pack", Price: "299.00", Stock: 50},
	}
}

func picsumURL(category string, idx int) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s-%d/600/600", category, idx)
}

package service

import (
	"context"
	"log"
	"strings"

	"github.com/shinyyama/petverse-backend/internal/authz"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/reqctx"
	"github.com/shinyyama/petverse-backend/internal/repository"
)

const (
	defaultNewsLimit = 3
	maxNewsLimit     = 20
)

type NewsInput struct {
	Title    string
	Content  string
	ImageURL *string
}

type NewsService interface {
	Latest(ctx context.Context, limit int) ([]model.News, error)
	Publish(ctx context.Context, actor *model.User, in NewsInput) (*model.News, error)
}

type newsService struct {
	repo repository.NewsRepository
}

func NewNewsService(repo repository.NewsRepository) NewsService {
	return &newsService{repo: repo}
}

// Latest returns the newest items; the home page shows three.
func (s *newsService) Latest(ctx context.Context, limit int) ([]model.News, error) {
	if limit <= 0 {
		limit = defaultNewsLimit
	}
	if limit > maxNewsLimit {
		limit = maxNewsLimit
	}
	return s.repo.ListLatest(ctx, limit)
}

func (s *newsService) Publish(ctx context.Context, actor *model.User, in NewsInput) (*model.News, error) {
	if !authz.Can(actor, authz.Administer) {
		return nil, ErrForbidden
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title is required")
	}
	if len(title) > 200 {
		return nil, invalid("title is too long")
	}
	n := &model.News{Title: title, Content: strings.TrimSpace(in.Content), ImageURL: in.ImageURL}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	log.Printf("[news] rid=%s actor=%d stage=published news=%d", reqctx.RID(ctx), actor.ID, n.ID)
	return n, nil
}

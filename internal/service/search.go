package service

import (
	"context"
	"strings"

	"tekblog/internal/models"
	"tekblog/internal/observability"
	"tekblog/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// SearchService dispatches a unified search query to the entity searchers.
// Unknown types are rejected, never silently mapped to a default.
type SearchService struct {
	users repository.UserRepository
	posts repository.PostRepository
	tags  repository.TagRepository
}

// NewSearchService returns a new SearchService.
func NewSearchService(users repository.UserRepository, posts repository.PostRepository, tags repository.TagRepository) *SearchService {
	return &SearchService{users: users, posts: posts, tags: tags}
}

// Search runs a paginated case-insensitive substring search over the entity
// type named by kind. An empty query matches everything of that type.
func (s *SearchService) Search(ctx context.Context, kind, q string, page, limit int) (interface{}, models.PageMeta, error) {
	ctx, span := observability.StartSpan(ctx, "SearchService.Search")
	defer span.End()
	span.SetAttributes(attribute.String("search.type", kind))

	switch strings.ToLower(kind) {
	case "tag":
		tags, meta, err := s.tags.Search(ctx, q, page, limit)
		return tags, meta, err
	case "user":
		users, meta, err := s.users.SearchGuests(ctx, q, page, limit)
		return users, meta, err
	case "post":
		posts, meta, err := s.posts.Search(ctx, q, page, limit)
		return posts, meta, err
	default:
		return nil, models.PageMeta{}, models.NewValidationError("Invalid type")
	}
}

package server

import (
	"tekblog/internal/models"
	"tekblog/internal/service"
	"tekblog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Title     string `json:"title" validate:"required,min=10,max=200"`
	Content   string `json:"content" validate:"required,min=10"`
	Thumbnail string `json:"thumbnail"`
	IsDraft   bool   `json:"isDraft"`
	Tags      []uint `json:"tags" validate:"required,min=1"`
}

type updatePostRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Thumbnail *string `json:"thumbnail"`
	IsDraft   *bool   `json:"isDraft"`
	Tags      []uint  `json:"tags"`
}

// requireTags verifies that every submitted tag ID exists.
func (s *Server) requireTags(c *fiber.Ctx, tagIDs []uint) error {
	tags, err := s.tagRepo.GetByIDs(c.UserContext(), tagIDs)
	if err != nil {
		return err
	}
	if len(tags) != len(tagIDs) {
		return models.NewNotFoundError("Tags not found")
	}
	return nil
}

// CreatePost creates a post owned by the caller. All submitted tag IDs must
// exist; the links are written with the post in one transaction.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if err := validation.Struct(req); err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.requireTags(c, req.Tags); err != nil {
		return models.RespondWithError(c, err)
	}

	post := models.Post{
		Title:     req.Title,
		Content:   req.Content,
		Thumbnail: req.Thumbnail,
		IsDraft:   req.IsDraft,
		AuthorID:  currentUserID(c),
	}
	if post.Thumbnail == "" {
		post.Thumbnail = models.DefaultThumbnail
	}

	if err := s.postRepo.Create(c.UserContext(), &post, req.Tags); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Post created", post)
}

// GetPosts lists published posts, newest first, without content.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	posts, meta, err := s.postRepo.ListPublished(c.UserContext(), page, limit, s.optionalUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondPage(c, "Posts", posts, meta)
}

// GetHotPost returns the most-liked published post.
func (s *Server) GetHotPost(c *fiber.Ctx) error {
	posts, err := s.postRepo.Hottest(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Posts", posts)
}

// GetUserPosts lists the caller's own posts, drafts included.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	posts, meta, err := s.postRepo.ListByAuthor(c.UserContext(), currentUserID(c), page, limit)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondPage(c, "User's posts", posts, meta)
}

// GetPostsByTag lists published posts carrying the given tag.
func (s *Server) GetPostsByTag(c *fiber.Ctx) error {
	tagID, err := parseID(c.Query("tag_id"), "tag_id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	page, limit := parsePagination(c)
	posts, meta, err := s.postRepo.ListByTag(c.UserContext(), tagID, page, limit)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondPage(c, "Posts", posts, meta)
}

// GetPost returns the full post with author, ordered tags, and its first
// page of comments. Every tag attached to the post gains one score point
// per read.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parseID(c.Params("id"), "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	ctx := c.UserContext()
	viewerID := s.optionalUserID(c)
	post, err := s.postRepo.GetByID(ctx, postID, viewerID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	comments, _, err := s.commentRepo.ListByPost(ctx, postID, 1, 10, viewerID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	post.Comments = comments

	if len(post.Tags) > 0 {
		tagIDs := make([]uint, 0, len(post.Tags))
		for _, t := range post.Tags {
			tagIDs = append(tagIDs, t.ID)
		}
		if err := s.tagRepo.IncrementScores(ctx, tagIDs); err != nil {
			return models.RespondWithError(c, err)
		}
	}

	return models.Respond(c, fiber.StatusOK, "Post", post)
}

// UpdatePost applies a partial update to a post the caller owns.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := parseID(c.Params("id"), "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req updatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	ctx := c.UserContext()
	post, err := s.postRepo.GetByID(ctx, postID, 0)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if post.AuthorID != currentUserID(c) {
		return models.RespondWithError(c,
			models.NewForbiddenError("You are not the author of this post"))
	}

	if req.Title != nil {
		if err := validation.Var("Title", *req.Title, "required,min=10,max=200"); err != nil {
			return models.RespondWithError(c, err)
		}
		post.Title = *req.Title
	}
	if req.Content != nil {
		if err := validation.Var("Content", *req.Content, "required,min=10"); err != nil {
			return models.RespondWithError(c, err)
		}
		post.Content = *req.Content
	}
	if req.Thumbnail != nil {
		post.Thumbnail = *req.Thumbnail
	}
	if req.IsDraft != nil {
		post.IsDraft = *req.IsDraft
	}
	if req.Tags != nil {
		if err := s.requireTags(c, req.Tags); err != nil {
			return models.RespondWithError(c, err)
		}
	}

	if err := s.postRepo.Update(ctx, post, req.Tags); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Post updated", post)
}

// DeletePost removes a post the caller owns together with its comments,
// likes, saves, and tag links in one transaction.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseID(c.Params("id"), "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	ctx := c.UserContext()
	post, err := s.postRepo.GetByID(ctx, postID, 0)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if post.AuthorID != currentUserID(c) {
		return models.RespondWithError(c,
			models.NewForbiddenError("You are not the author of this post"))
	}

	if err := s.postRepo.DeleteCascade(ctx, post); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Post deleted", nil)
}

// LikePost toggles the caller's membership in the post's liker set.
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := parseID(c.Query("post_id"), "post_id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	state, err := s.relationships.ToggleLike(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	message := "Post liked"
	if state == service.ToggleRemoved {
		message = "Post unliked"
	}
	return models.Respond(c, fiber.StatusOK, message, nil)
}

// SavePost toggles the caller's membership in the post's saver set.
func (s *Server) SavePost(c *fiber.Ctx) error {
	postID, err := parseID(c.Query("post_id"), "post_id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	state, err := s.relationships.ToggleSave(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	message := "Post saved"
	if state == service.ToggleRemoved {
		message = "Post unsaved"
	}
	return models.Respond(c, fiber.StatusOK, message, nil)
}

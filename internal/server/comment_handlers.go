package server

import (
	"tekblog/internal/models"
	"tekblog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	Content string `json:"content" validate:"required,min=1"`
	Parent  *uint  `json:"parent"`
}

type updateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}

// CreateComment adds a comment to a post and bumps the post's comment
// counter in the same transaction. One level of threading is allowed.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c.Params("postId"), "postId")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if err := validation.Struct(req); err != nil {
		return models.RespondWithError(c, err)
	}

	ctx := c.UserContext()
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return models.RespondWithError(c, err)
	}

	if req.Parent != nil {
		parent, err := s.commentRepo.GetByID(ctx, *req.Parent)
		if err != nil {
			return models.RespondWithError(c,
				models.NewNotFoundError("Parent comment not found"))
		}
		if parent.PostID != postID {
			return models.RespondWithError(c,
				models.NewValidationError("Parent comment does not belong to this post"))
		}
		if parent.ParentID != nil {
			return models.RespondWithError(c,
				models.NewInvalidOperationError("Comments can only be nested one level deep"))
		}
	}

	comment := models.Comment{
		Content:  req.Content,
		AuthorID: currentUserID(c),
		PostID:   postID,
		ParentID: req.Parent,
	}
	if err := s.commentRepo.CreateWithCount(ctx, &comment); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "Comment created", comment)
}

// GetComments lists a post's top-level comments, newest first, with their
// children and like tallies.
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := parseID(c.Params("postId"), "postId")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	page, limit := parsePagination(c)
	comments, meta, err := s.commentRepo.ListByPost(c.UserContext(), postID, page, limit, s.optionalUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondPage(c, "Comments", comments, meta)
}

// UpdateComment edits a comment's content. Author only.
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := parseID(c.Params("id"), "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req updateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if err := validation.Struct(req); err != nil {
		return models.RespondWithError(c, err)
	}

	ctx := c.UserContext()
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if comment.AuthorID != currentUserID(c) {
		return models.RespondWithError(c,
			models.NewForbiddenError("You are not the author of this comment"))
	}

	comment.Content = req.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Comment updated", comment)
}

// DeleteComment removes a comment (and its children) and decrements the
// post's counter by the number of rows actually deleted. Author only.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := parseID(c.Params("id"), "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	ctx := c.UserContext()
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if comment.AuthorID != currentUserID(c) {
		return models.RespondWithError(c,
			models.NewForbiddenError("You are not the author of this comment"))
	}

	if err := s.commentRepo.DeleteWithCount(ctx, comment); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Comment deleted", nil)
}

// LikeComment toggles the caller's membership in the comment's liker set.
func (s *Server) LikeComment(c *fiber.Ctx) error {
	commentID, err := parseID(c.Params("id"), "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	ctx := c.UserContext()
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return models.RespondWithError(c, err)
	}

	liked, err := s.commentRepo.ToggleLike(ctx, currentUserID(c), commentID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	message := "Comment liked"
	if !liked {
		message = "Comment unliked"
	}
	return models.Respond(c, fiber.StatusOK, message, nil)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicwatch/internal/middleware"
	"civicwatch/internal/repository"
	"civicwatch/internal/services"
	"civicwatch/internal/utils"
	"civicwatch/pkg/constants"
	"civicwatch/pkg/logger"
)

// CommentHandler serves the comment endpoints
type CommentHandler struct {
	commentService services.CommentService
	commentRepo    repository.CommentRepository
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService services.CommentService, commentRepo repository.CommentRepository) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		commentRepo:    commentRepo,
	}
}

type addCommentPayload struct {
	Text string `json:"text" binding:"required"`
}

type addReplyPayload struct {
	Text              string `json:"text" binding:"required"`
	ParentCommentID   string `json:"parent_comment_id" binding:"required"`
	ReplyToAuthorID   string `json:"reply_to_author_id" binding:"required"`
	ReplyToAuthorName string `json:"reply_to_author_name"`
}

// AddComment adds a root comment to a report
func (h *CommentHandler) AddComment(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("report_id"))
	if err != nil {
		utils.BadRequest(c, "Invalid report ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var payload addCommentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	comment, err := h.commentService.AddComment(c.Request.Context(), &services.AddCommentRequest{
		PostID:     postID,
		AuthorID:   actor.ID,
		AuthorName: actor.FullName,
		Text:       payload.Text,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Comment added successfully", comment)
}

// AddReply adds a reply beneath an existing comment
func (h *CommentHandler) AddReply(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("report_id"))
	if err != nil {
		utils.BadRequest(c, "Invalid report ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var payload addReplyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	parentID, err := primitive.ObjectIDFromHex(payload.ParentCommentID)
	if err != nil {
		utils.BadRequest(c, "Invalid parent comment ID")
		return
	}
	replyToID, err := primitive.ObjectIDFromHex(payload.ReplyToAuthorID)
	if err != nil {
		utils.BadRequest(c, "Invalid reply target ID")
		return
	}

	reply, err := h.commentService.AddReply(c.Request.Context(), &services.AddReplyRequest{
		PostID:            postID,
		AuthorID:          actor.ID,
		AuthorName:        actor.FullName,
		Text:              payload.Text,
		ParentCommentID:   parentID,
		ReplyToAuthorID:   replyToID,
		ReplyToAuthorName: payload.ReplyToAuthorName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Reply added successfully", reply)
}

// GetComments returns the report's comments as a two-level thread
func (h *CommentHandler) GetComments(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("report_id"))
	if err != nil {
		utils.BadRequest(c, "Invalid report ID")
		return
	}

	comments, err := h.commentService.GetThreadedComments(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Comments retrieved successfully", comments)
}

// DeleteComment soft-deletes a comment. Admins may delete any comment;
// everyone else only their own.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("report_id"))
	if err != nil {
		utils.BadRequest(c, "Invalid report ID")
		return
	}
	commentID, err := primitive.ObjectIDFromHex(c.Param("comment_id"))
	if err != nil {
		utils.BadRequest(c, "Invalid comment ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	isAdmin := actor.Role == constants.RoleAdmin
	if !isAdmin {
		comment, err := h.commentRepo.GetByID(c.Request.Context(), commentID)
		if err != nil {
			respondError(c, err)
			return
		}
		if comment.AuthorID != actor.ID {
			utils.Forbidden(c, "You can only delete your own comments")
			return
		}
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), postID, commentID, isAdmin); err != nil {
		respondError(c, err)
		return
	}

	logger.WithUserID(actor.ID).WithField("comment_id", commentID).Info("Comment deleted")
	utils.SuccessResponse(c, http.StatusOK, "Comment deleted successfully", nil)
}

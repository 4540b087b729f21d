package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicwatch/internal/models"
	"civicwatch/internal/repository"
	"civicwatch/internal/utils"
	"civicwatch/pkg/constants"
	"civicwatch/pkg/errors"
	"civicwatch/pkg/logger"
)

// CommentService stores flat comment records and assembles them into a
// two-level thread: root comments and their direct replies.
type CommentService interface {
	AddComment(ctx context.Context, req *AddCommentRequest) (*models.Comment, error)
	AddReply(ctx context.Context, req *AddReplyRequest) (*models.Comment, error)
	GetThreadedComments(ctx context.Context, postID primitive.ObjectID) ([]*models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID primitive.ObjectID, requestedByAdmin bool) error
}

// Request structs
type AddCommentRequest struct {
	PostID     primitive.ObjectID `json:"post_id"`
	AuthorID   primitive.ObjectID `json:"author_id"`
	AuthorName string             `json:"author_name"`
	Text       string             `json:"text"`
}

type AddReplyRequest struct {
	PostID            primitive.ObjectID `json:"post_id"`
	AuthorID          primitive.ObjectID `json:"author_id"`
	AuthorName        string             `json:"author_name"`
	Text              string             `json:"text"`
	ParentCommentID   primitive.ObjectID `json:"parent_comment_id"`
	ReplyToAuthorID   primitive.ObjectID `json:"reply_to_author_id"`
	ReplyToAuthorName string             `json:"reply_to_author_name"`
}

// commentService implements CommentService
type commentService struct {
	commentRepo repository.CommentRepository
	logger      *logger.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(commentRepo repository.CommentRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		logger:      logger.NewComponentLogger("CommentService"),
	}
}

// AddComment persists a new root comment. The post is not required to exist;
// referential integrity is handled gracefully at read time.
func (s *commentService) AddComment(ctx context.Context, req *AddCommentRequest) (*models.Comment, error) {
	if utils.IsBlank(req.Text) {
		return nil, errors.NewBlankCommentError()
	}
	if len(req.Text) > constants.MaxCommentTextLength {
		return nil, errors.NewInvalidFieldError("text", "too long")
	}

	comment := &models.Comment{
		PostID:     req.PostID,
		AuthorID:   req.AuthorID,
		AuthorName: req.AuthorName,
		Text:       req.Text,
	}

	if err := s.commentRepo.Insert(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

// AddReply persists a reply carrying a parent pointer and the denormalized
// identity of the author being answered. A parent that does not exist is
// accepted; the read path surfaces such replies as orphaned roots.
func (s *commentService) AddReply(ctx context.Context, req *AddReplyRequest) (*models.Comment, error) {
	if utils.IsBlank(req.Text) {
		return nil, errors.NewBlankCommentError()
	}
	if len(req.Text) > constants.MaxCommentTextLength {
		return nil, errors.NewInvalidFieldError("text", "too long")
	}
	if req.ParentCommentID.IsZero() {
		return nil, errors.NewRequiredFieldError("parent_comment_id")
	}

	parentID := req.ParentCommentID
	replyToID := req.ReplyToAuthorID

	comment := &models.Comment{
		PostID:            req.PostID,
		AuthorID:          req.AuthorID,
		AuthorName:        req.AuthorName,
		Text:              req.Text,
		ParentCommentID:   &parentID,
		ReplyToAuthorID:   &replyToID,
		ReplyToAuthorName: req.ReplyToAuthorName,
	}

	if err := s.commentRepo.Insert(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

// GetThreadedComments fetches the post's comments oldest-first and partitions
// them into a two-level tree. Nothing is ever dropped: a reply whose parent
// is missing becomes an orphaned root, and replies-to-replies attach to the
// nearest ancestor root rather than nesting.
func (s *commentService) GetThreadedComments(ctx context.Context, postID primitive.ObjectID) ([]*models.Comment, error) {
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]*models.Comment, len(comments))
	for _, c := range comments {
		// Soft-deleted comments keep their place in the thread but never
		// surface their stored text.
		c.Text = c.DisplayText()
		byID[c.ID] = c
	}

	threaded := make([]*models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.IsRoot() {
			threaded = append(threaded, c)
			continue
		}

		root := resolveRoot(c, byID)
		if root == nil {
			// Orphan: parent chain leaves the fetched set. Promote to root
			// with no replies of its own.
			threaded = append(threaded, c)
			continue
		}
		root.Replies = append(root.Replies, c)
	}

	return threaded, nil
}

// resolveRoot walks the parent chain to the topmost comment present in the
// fetched set. It returns nil when the chain exits the set (orphan) and stops
// on repeated ids, so malformed data cannot loop.
func resolveRoot(c *models.Comment, byID map[primitive.ObjectID]*models.Comment) *models.Comment {
	seen := map[primitive.ObjectID]bool{c.ID: true}
	current := c
	for current.ParentCommentID != nil {
		parent, ok := byID[*current.ParentCommentID]
		if !ok {
			return nil
		}
		if seen[parent.ID] {
			return nil
		}
		seen[parent.ID] = true
		current = parent
	}
	return current
}

// DeleteComment soft-deletes: the record stays, replies keep their anchor,
// and presentation masks the text. The caller supplies the actor
// classification; the attribution is always stamped alongside the flag.
func (s *commentService) DeleteComment(ctx context.Context, postID, commentID primitive.ObjectID, requestedByAdmin bool) error {
	deletedBy := constants.DeletedBySelf
	if requestedByAdmin {
		deletedBy = constants.DeletedByAdmin
	}

	return s.commentRepo.SoftDelete(ctx, postID, commentID, deletedBy)
}

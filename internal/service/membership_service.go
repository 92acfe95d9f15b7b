package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bittutor/bittutor-api/internal/models"
	appErrors "github.com/bittutor/bittutor-api/pkg/errors"
)

type membershipRepository interface {
	Subscribe(ctx context.Context, userID, courseID int) error
	Unsubscribe(ctx context.Context, userID, courseID int) error
	AddWish(ctx context.Context, userID, courseID int) error
	RemoveWish(ctx context.Context, userID, courseID int) error
	Ban(ctx context.Context, userID, courseID int) error
	Unban(ctx context.Context, userID, courseID int) error
	Complete(ctx context.Context, userID, courseID int, date time.Time) error
	FindCompletion(ctx context.Context, userID, courseID int) (*models.Completion, error)
	IsSubscribed(ctx context.Context, userID, courseID int) (bool, error)
}

type reviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByCourse(ctx context.Context, courseID int) ([]models.Review, error)
}

type courseFinder interface {
	FindByID(ctx context.Context, id int) (*models.Course, error)
}

// SubmitReviewRequest holds the payload for rating a course.
type SubmitReviewRequest struct {
	Stars    int    `json:"stars" validate:"required,min=1,max=5"`
	Comments string `json:"comments" validate:"plaintext"`
}

// MembershipService manages the user↔course relationships: enrollment,
// wishlist, bans, completions and reviews.
type MembershipService struct {
	repo      membershipRepository
	reviews   reviewRepository
	courses   courseFinder
	offers    offerCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewMembershipService constructs the membership service. offers may be nil.
func NewMembershipService(repo membershipRepository, reviews reviewRepository, courses courseFinder, offers offerCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *MembershipService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MembershipService{repo: repo, reviews: reviews, courses: courses, offers: offers, validator: validate, logger: logger, now: time.Now}
}

func (s *MembershipService) courseExists(ctx context.Context, courseID int) error {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return nil
}

// Subscribe enrolls a user in a course.
func (s *MembershipService) Subscribe(ctx context.Context, userID, courseID int) error {
	if err := s.courseExists(ctx, courseID); err != nil {
		return err
	}
	subscribed, err := s.repo.IsSubscribed(ctx, userID, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subscription")
	}
	if subscribed {
		return appErrors.Clone(appErrors.ErrConflict, "already subscribed")
	}
	if err := s.repo.Subscribe(ctx, userID, courseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to subscribe")
	}
	return nil
}

// Unsubscribe removes an enrollment.
func (s *MembershipService) Unsubscribe(ctx context.Context, userID, courseID int) error {
	if err := s.repo.Unsubscribe(ctx, userID, courseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unsubscribe")
	}
	return nil
}

// AddWish saves a course to the user's wishlist.
func (s *MembershipService) AddWish(ctx context.Context, userID, courseID int) error {
	if err := s.courseExists(ctx, courseID); err != nil {
		return err
	}
	if err := s.repo.AddWish(ctx, userID, courseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add wish")
	}
	return nil
}

// RemoveWish drops a course from the user's wishlist.
func (s *MembershipService) RemoveWish(ctx context.Context, userID, courseID int) error {
	if err := s.repo.RemoveWish(ctx, userID, courseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove wish")
	}
	return nil
}

// Ban excludes a user from a course.
func (s *MembershipService) Ban(ctx context.Context, userID, courseID int) error {
	if err := s.courseExists(ctx, courseID); err != nil {
		return err
	}
	if err := s.repo.Ban(ctx, userID, courseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to ban user")
	}
	return nil
}

// Unban lifts a course exclusion.
func (s *MembershipService) Unban(ctx context.Context, userID, courseID int) error {
	if err := s.repo.Unban(ctx, userID, courseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unban user")
	}
	return nil
}

// Complete records that a subscribed user finished the course and ends the
// enrollment.
func (s *MembershipService) Complete(ctx context.Context, userID, courseID int) error {
	subscribed, err := s.repo.IsSubscribed(ctx, userID, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subscription")
	}
	if !subscribed {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "user is not subscribed to the course")
	}
	if err := s.repo.Complete(ctx, userID, courseID, s.now()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record completion")
	}
	if err := s.repo.Unsubscribe(ctx, userID, courseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to end enrollment")
	}
	return nil
}

// SubmitReview stores a star rating for a course.
func (s *MembershipService) SubmitReview(ctx context.Context, userID, courseID int, req SubmitReviewRequest) (*models.Review, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	if err := s.courseExists(ctx, courseID); err != nil {
		return nil, err
	}
	review := &models.Review{Author: userID, CourseID: courseID, Stars: req.Stars, Comments: req.Comments}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create review")
	}
	if s.offers != nil {
		s.offers.InvalidateOffers(ctx)
	}
	return review, nil
}

// Reviews lists a course's reviews.
func (s *MembershipService) Reviews(ctx context.Context, courseID int) ([]models.Review, error) {
	if err := s.courseExists(ctx, courseID); err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviews")
	}
	return reviews, nil
}

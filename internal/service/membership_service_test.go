package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bittutor/bittutor-api/internal/models"
	appErrors "github.com/bittutor/bittutor-api/pkg/errors"
)

type membershipRepoStub struct {
	subscriptions map[[2]int]bool
	completions   map[[2]int]models.Completion
	wishes        map[[2]int]bool
	bans          map[[2]int]bool
}

func newMembershipRepoStub() *membershipRepoStub {
	return &membershipRepoStub{
		subscriptions: map[[2]int]bool{},
		completions:   map[[2]int]models.Completion{},
		wishes:        map[[2]int]bool{},
		bans:          map[[2]int]bool{},
	}
}

func (r *membershipRepoStub) Subscribe(ctx context.Context, userID, courseID int) error {
	r.subscriptions[[2]int{userID, courseID}] = true
	return nil
}

func (r *membershipRepoStub) Unsubscribe(ctx context.Context, userID, courseID int) error {
	delete(r.subscriptions, [2]int{userID, courseID})
	return nil
}

func (r *membershipRepoStub) AddWish(ctx context.Context, userID, courseID int) error {
	r.wishes[[2]int{userID, courseID}] = true
	return nil
}

func (r *membershipRepoStub) RemoveWish(ctx context.Context, userID, courseID int) error {
	delete(r.wishes, [2]int{userID, courseID})
	return nil
}

func (r *membershipRepoStub) Ban(ctx context.Context, userID, courseID int) error {
	r.bans[[2]int{userID, courseID}] = true
	return nil
}

func (r *membershipRepoStub) Unban(ctx context.Context, userID, courseID int) error {
	delete(r.bans, [2]int{userID, courseID})
	return nil
}

func (r *membershipRepoStub) Complete(ctx context.Context, userID, courseID int, date time.Time) error {
	r.completions[[2]int{userID, courseID}] = models.Completion{UserID: userID, CourseID: courseID, Date: date}
	return nil
}

func (r *membershipRepoStub) FindCompletion(ctx context.Context, userID, courseID int) (*models.Completion, error) {
	completion, ok := r.completions[[2]int{userID, courseID}]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &completion, nil
}

func (r *membershipRepoStub) IsSubscribed(ctx context.Context, userID, courseID int) (bool, error) {
	return r.subscriptions[[2]int{userID, courseID}], nil
}

type reviewRepoStub struct {
	reviews []models.Review
}

func (r *reviewRepoStub) Create(ctx context.Context, review *models.Review) error {
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r *reviewRepoStub) ListByCourse(ctx context.Context, courseID int) ([]models.Review, error) {
	return r.reviews, nil
}

func newMembershipService(repo *membershipRepoStub, reviews *reviewRepoStub) *MembershipService {
	courses := &courseFinderStub{courses: map[int]*models.Course{5: {ID: 5, Name: "Algebra"}}}
	return NewMembershipService(repo, reviews, courses, nil, nil, nil)
}

func TestSubscribeRejectsDuplicate(t *testing.T) {
	repo := newMembershipRepoStub()
	svc := newMembershipService(repo, &reviewRepoStub{})

	require.NoError(t, svc.Subscribe(context.Background(), 7, 5))
	err := svc.Subscribe(context.Background(), 7, 5)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSubscribeUnknownCourse(t *testing.T) {
	svc := newMembershipService(newMembershipRepoStub(), &reviewRepoStub{})
	err := svc.Subscribe(context.Background(), 7, 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCompleteRequiresSubscription(t *testing.T) {
	repo := newMembershipRepoStub()
	svc := newMembershipService(repo, &reviewRepoStub{})

	err := svc.Complete(context.Background(), 7, 5)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestCompleteRecordsDateAndEndsEnrollment(t *testing.T) {
	repo := newMembershipRepoStub()
	svc := newMembershipService(repo, &reviewRepoStub{})
	fixed := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	require.NoError(t, svc.Subscribe(context.Background(), 7, 5))
	require.NoError(t, svc.Complete(context.Background(), 7, 5))

	completion, err := repo.FindCompletion(context.Background(), 7, 5)
	require.NoError(t, err)
	assert.Equal(t, fixed, completion.Date)
	assert.False(t, repo.subscriptions[[2]int{7, 5}])
}

func TestSubmitReviewValidatesStars(t *testing.T) {
	svc := newMembershipService(newMembershipRepoStub(), &reviewRepoStub{})

	_, err := svc.SubmitReview(context.Background(), 7, 5, SubmitReviewRequest{Stars: 6})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	review, err := svc.SubmitReview(context.Background(), 7, 5, SubmitReviewRequest{Stars: 4, Comments: "solid"})
	require.NoError(t, err)
	assert.Equal(t, 7, review.Author)
	assert.Equal(t, 4, review.Stars)
}

func TestSubmitReviewRejectsSemicolonComments(t *testing.T) {
	svc := newMembershipService(newMembershipRepoStub(), &reviewRepoStub{})
	_, err := svc.SubmitReview(context.Background(), 7, 5, SubmitReviewRequest{Stars: 3, Comments: "nice; course"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

package service

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bittutor/bittutor-api/internal/models"
	appErrors "github.com/bittutor/bittutor-api/pkg/errors"
)

type userRepoStub struct {
	byID    map[int]*models.User
	byMail  map[string]*models.User
	nextID  int
	deleted []int
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{byID: map[int]*models.User{}, byMail: map[string]*models.User{}, nextID: 1}
}

func (r *userRepoStub) Create(ctx context.Context, user *models.User) error {
	user.ID = r.nextID
	r.nextID++
	r.byID[user.ID] = user
	r.byMail[user.Mail] = user
	return nil
}

func (r *userRepoStub) FindByID(ctx context.Context, id int) (*models.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (r *userRepoStub) FindByMail(ctx context.Context, mail string) (*models.User, error) {
	user, ok := r.byMail[mail]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (r *userRepoStub) Update(ctx context.Context, user *models.User) error {
	r.byID[user.ID] = user
	return nil
}

func (r *userRepoStub) UpdatePassword(ctx context.Context, id int, hash string) error {
	r.byID[id].Password = hash
	return nil
}

func (r *userRepoStub) Delete(ctx context.Context, id int) error {
	r.deleted = append(r.deleted, id)
	delete(r.byID, id)
	return nil
}

type taughtStub struct {
	ids []int
}

func (s *taughtStub) IDsTaughtBy(ctx context.Context, userID int) ([]int, error) {
	return s.ids, nil
}

func TestRegisterHashesPasswordAndCreatesDirectory(t *testing.T) {
	repo := newUserRepoStub()
	store := newTestStore(t)
	svc := NewUserService(repo, &taughtStub{}, store, nil, nil)

	user, err := svc.Register(context.Background(), RegisterUserRequest{
		Mail: "ada@example.com", Name: "Ada", Password: "secret1", Age: 28, StudyLevel: "graduate",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.NotEqual(t, "secret1", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret1")))

	info, err := os.Stat(store.UserDir(user.ID))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRegisterRejectsDuplicateMail(t *testing.T) {
	repo := newUserRepoStub()
	svc := NewUserService(repo, &taughtStub{}, newTestStore(t), nil, nil)

	_, err := svc.Register(context.Background(), RegisterUserRequest{
		Mail: "ada@example.com", Name: "Ada", Password: "secret1", Age: 28, StudyLevel: "graduate",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterUserRequest{
		Mail: "ada@example.com", Name: "Other", Password: "secret2", Age: 30, StudyLevel: "college",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRegisterRejectsSemicolonInName(t *testing.T) {
	svc := NewUserService(newUserRepoStub(), &taughtStub{}, newTestStore(t), nil, nil)
	_, err := svc.Register(context.Background(), RegisterUserRequest{
		Mail: "ada@example.com", Name: "Ada; DROP TABLE users", Password: "secret1", Age: 28, StudyLevel: "graduate",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDeleteUserRemovesTaughtCourseDirectories(t *testing.T) {
	repo := newUserRepoStub()
	store := newTestStore(t)
	svc := NewUserService(repo, &taughtStub{ids: []int{5, 8}}, store, nil, nil)

	user, err := svc.Register(context.Background(), RegisterUserRequest{
		Mail: "ada@example.com", Name: "Ada", Password: "secret1", Age: 28, StudyLevel: "graduate",
	})
	require.NoError(t, err)
	require.NoError(t, store.EnsureDir(store.CourseDir(5)))
	require.NoError(t, store.EnsureDir(store.CourseDir(8)))

	require.NoError(t, svc.Delete(context.Background(), user.ID))

	assert.Equal(t, []int{user.ID}, repo.deleted)
	for _, dir := range []string{store.UserDir(user.ID), store.CourseDir(5), store.CourseDir(8)} {
		_, err := os.Stat(dir)
		assert.True(t, os.IsNotExist(err), "expected %s to be removed", dir)
	}
}

func TestChangePasswordVerifiesCurrent(t *testing.T) {
	repo := newUserRepoStub()
	svc := NewUserService(repo, &taughtStub{}, newTestStore(t), nil, nil)

	user, err := svc.Register(context.Background(), RegisterUserRequest{
		Mail: "ada@example.com", Name: "Ada", Password: "secret1", Age: 28, StudyLevel: "graduate",
	})
	require.NoError(t, err)

	require.Error(t, svc.ChangePassword(context.Background(), user.ID, "wrong", "newsecret"))
	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "secret1", "newsecret"))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.byID[user.ID].Password), []byte("newsecret")))
}

package service

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bittutor/bittutor-api/internal/models"
	appErrors "github.com/bittutor/bittutor-api/pkg/errors"
)

type categoryRepoStub struct {
	byName  map[string]*models.Category
	deleted []string
}

func newCategoryRepoStub() *categoryRepoStub {
	return &categoryRepoStub{byName: map[string]*models.Category{}}
}

func (r *categoryRepoStub) Create(ctx context.Context, category *models.Category) error {
	r.byName[category.Name] = category
	return nil
}

func (r *categoryRepoStub) FindByName(ctx context.Context, name string) (*models.Category, error) {
	category, ok := r.byName[name]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return category, nil
}

func (r *categoryRepoStub) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	for _, category := range r.byName {
		categories = append(categories, *category)
	}
	return categories, nil
}

func (r *categoryRepoStub) Delete(ctx context.Context, name string) error {
	r.deleted = append(r.deleted, name)
	delete(r.byName, name)
	return nil
}

type categoryCoursesStub struct {
	ids []int
}

func (s *categoryCoursesStub) IDsInCategory(ctx context.Context, category string) ([]int, error) {
	return s.ids, nil
}

func TestCreateCategoryRejectsDuplicate(t *testing.T) {
	repo := newCategoryRepoStub()
	svc := NewCategoryService(repo, &categoryCoursesStub{}, newTestStore(t), nil, nil)

	_, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "Math"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateCategoryRequest{Name: "Math"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCreateCategoryRejectsPathSeparatorsInName(t *testing.T) {
	svc := NewCategoryService(newCategoryRepoStub(), &categoryCoursesStub{}, newTestStore(t), nil, nil)

	for _, name := range []string{"../etc", `math\evil`} {
		_, err := svc.Create(context.Background(), CreateCategoryRequest{Name: name})
		require.Error(t, err, "expected %q to be rejected", name)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestDeleteCategoryRemovesCascadedCourseDirectories(t *testing.T) {
	repo := newCategoryRepoStub()
	store := newTestStore(t)
	svc := NewCategoryService(repo, &categoryCoursesStub{ids: []int{42}}, store, nil, nil)

	_, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "Math"})
	require.NoError(t, err)
	require.NoError(t, store.EnsureDir(store.ContentDir(42)))
	require.NoError(t, store.WriteContent(42, "notes.pdf", []byte("pages")))

	require.NoError(t, svc.Delete(context.Background(), "Math"))

	assert.Equal(t, []string{"Math"}, repo.deleted)
	for _, dir := range []string{store.CategoryDir("Math"), store.CourseDir(42)} {
		_, err := os.Stat(dir)
		assert.True(t, os.IsNotExist(err), "expected %s to be removed", dir)
	}
}

func TestDeleteCategoryUnknownName(t *testing.T) {
	svc := NewCategoryService(newCategoryRepoStub(), &categoryCoursesStub{}, newTestStore(t), nil, nil)
	err := svc.Delete(context.Background(), "Ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bittutor/bittutor-api/internal/models"
	appErrors "github.com/bittutor/bittutor-api/pkg/errors"
)

type resourceRepoStub struct {
	resources map[string]*models.Resource
}

func newResourceRepoStub() *resourceRepoStub {
	return &resourceRepoStub{resources: map[string]*models.Resource{}}
}

func resourceKey(name string, courseID int) string {
	return fmt.Sprintf("%s|%d", name, courseID)
}

func (r *resourceRepoStub) Create(ctx context.Context, resource *models.Resource) error {
	r.resources[resourceKey(resource.Name, resource.CourseID)] = resource
	return nil
}

func (r *resourceRepoStub) FindByKey(ctx context.Context, name string, courseID int) (*models.Resource, error) {
	resource, ok := r.resources[resourceKey(name, courseID)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return resource, nil
}

func (r *resourceRepoStub) ListByCourse(ctx context.Context, courseID int) ([]models.Resource, error) {
	var list []models.Resource
	for _, resource := range r.resources {
		if resource.CourseID == courseID {
			list = append(list, *resource)
		}
	}
	return list, nil
}

func (r *resourceRepoStub) Delete(ctx context.Context, name string, courseID int) error {
	delete(r.resources, resourceKey(name, courseID))
	return nil
}

type accessLogStub struct {
	accesses []models.ResourceAccess
}

func (s *accessLogStub) LogResourceAccess(ctx context.Context, access models.ResourceAccess) error {
	s.accesses = append(s.accesses, access)
	return nil
}

func TestAddLoadableResourceWritesContent(t *testing.T) {
	store := newTestStore(t)
	svc := NewResourceService(newResourceRepoStub(), &accessLogStub{}, store, nil, nil)

	resource, err := svc.Add(context.Background(), 5, AddResourceRequest{
		Name: "syllabus.pdf", Title: "Syllabus", Format: models.FormatPDF, Data: []byte("%PDF-1.4"),
	})
	require.NoError(t, err)

	data, found, err := store.ReadContent(5, resource.Name)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("%PDF-1.4"), data)
}

func TestAddLoadableResourceRequiresData(t *testing.T) {
	svc := NewResourceService(newResourceRepoStub(), &accessLogStub{}, newTestStore(t), nil, nil)

	_, err := svc.Add(context.Background(), 5, AddResourceRequest{
		Name: "syllabus.pdf", Title: "Syllabus", Format: models.FormatPDF,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAddOtherFormatSkipsContentWrite(t *testing.T) {
	store := newTestStore(t)
	svc := NewResourceService(newResourceRepoStub(), &accessLogStub{}, store, nil, nil)

	resource, err := svc.Add(context.Background(), 5, AddResourceRequest{
		Name: "external-link", Title: "Video", Format: models.FormatOther,
	})
	require.NoError(t, err)

	_, found, err := store.ReadContent(5, resource.Name)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetResourceLogsAccessAndLoadsBytes(t *testing.T) {
	store := newTestStore(t)
	access := &accessLogStub{}
	svc := NewResourceService(newResourceRepoStub(), access, store, nil, nil)

	_, err := svc.Add(context.Background(), 5, AddResourceRequest{
		Name: "notes.txt", Title: "Notes", Format: models.FormatTxt, Data: []byte("hello"),
	})
	require.NoError(t, err)

	content, err := svc.Get(context.Background(), 5, "notes.txt", 7)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), content.Data)

	require.Len(t, access.accesses, 1)
	assert.Equal(t, models.ResourceAccess{ResourceName: "notes.txt", CourseID: 5, UserID: 7}, access.accesses[0])
}

func TestDeleteResourceRemovesContentFile(t *testing.T) {
	store := newTestStore(t)
	svc := NewResourceService(newResourceRepoStub(), &accessLogStub{}, store, nil, nil)

	_, err := svc.Add(context.Background(), 5, AddResourceRequest{
		Name: "notes.txt", Title: "Notes", Format: models.FormatTxt, Data: []byte("hello"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 5, "notes.txt"))
	_, found, err := store.ReadContent(5, "notes.txt")
	require.NoError(t, err)
	assert.False(t, found)
}

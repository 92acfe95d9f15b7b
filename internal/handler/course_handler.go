package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bittutor/bittutor-api/internal/service"
	appErrors "github.com/bittutor/bittutor-api/pkg/errors"
	"github.com/bittutor/bittutor-api/pkg/response"
)

// CourseHandler exposes course, resource, membership, review, report and
// certificate endpoints.
type CourseHandler struct {
	courses      *service.CourseService
	resources    *service.ResourceService
	memberships  *service.MembershipService
	reports      *service.ReportService
	certificates *service.CertificateService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses *service.CourseService, resources *service.ResourceService, memberships *service.MembershipService, reports *service.ReportService, certificates *service.CertificateService) *CourseHandler {
	return &CourseHandler{
		courses:      courses,
		resources:    resources,
		memberships:  memberships,
		reports:      reports,
		certificates: certificates,
	}
}

// Create godoc
// @Summary Publish a course taught by the caller
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.courses.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Get godoc
// @Summary Get a course
// @Tags Courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	course, err := h.courses.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Teacher godoc
// @Summary The user teaching a course
// @Tags Courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/teacher [get]
func (h *CourseHandler) Teacher(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	teacher, err := h.courses.Teacher(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Taught godoc
// @Summary Courses taught by a user
// @Tags Courses
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} response.Envelope
// @Router /users/{id}/courses [get]
func (h *CourseHandler) Taught(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	courses, err := h.courses.ListByTeacher(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Delete godoc
// @Summary Delete an own course
// @Tags Courses
// @Param id path int true "Course ID"
// @Success 204
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.courses.Delete(c.Request.Context(), id, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Image godoc
// @Summary Get a course image
// @Tags Courses
// @Produce octet-stream
// @Param id path int true "Course ID"
// @Success 200
// @Router /courses/{id}/image [get]
func (h *CourseHandler) Image(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	data, err := h.courses.Image(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// PutImage godoc
// @Summary Replace a course image
// @Tags Courses
// @Accept octet-stream
// @Success 204
// @Router /courses/{id}/image [put]
func (h *CourseHandler) PutImage(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	data, ext, err := imageUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.courses.ReplaceImage(c.Request.Context(), id, ext, data); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddResource godoc
// @Summary Attach material to a course
// @Tags Resources
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param payload body service.AddResourceRequest true "Resource payload"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/resources [post]
func (h *CourseHandler) AddResource(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.AddResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resource, err := h.resources.Add(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resource)
}

// ListResources godoc
// @Summary List a course's materials in page order
// @Tags Resources
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/resources [get]
func (h *CourseHandler) ListResources(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	resources, err := h.resources.List(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resources, nil)
}

// GetResource godoc
// @Summary Fetch one material, including its bytes for loadable formats
// @Tags Resources
// @Produce json
// @Param id path int true "Course ID"
// @Param name path string true "Resource name"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/resources/{name} [get]
func (h *CourseHandler) GetResource(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	content, err := h.resources.Get(c.Request.Context(), id, c.Param("name"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, content, nil)
}

// DeleteResource godoc
// @Summary Remove a material from a course
// @Tags Resources
// @Param id path int true "Course ID"
// @Param name path string true "Resource name"
// @Success 204
// @Router /courses/{id}/resources/{name} [delete]
func (h *CourseHandler) DeleteResource(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.resources.Delete(c.Request.Context(), id, c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Subscribe godoc
// @Summary Enroll in a course
// @Tags Membership
// @Param id path int true "Course ID"
// @Success 204
// @Router /courses/{id}/subscribe [post]
func (h *CourseHandler) Subscribe(c *gin.Context) {
	h.membershipAction(c, h.memberships.Subscribe)
}

// Unsubscribe godoc
// @Summary Leave a course
// @Tags Membership
// @Param id path int true "Course ID"
// @Success 204
// @Router /courses/{id}/subscribe [delete]
func (h *CourseHandler) Unsubscribe(c *gin.Context) {
	h.membershipAction(c, h.memberships.Unsubscribe)
}

// Wish godoc
// @Summary Save a course to the wishlist
// @Tags Membership
// @Param id path int true "Course ID"
// @Success 204
// @Router /courses/{id}/wish [post]
func (h *CourseHandler) Wish(c *gin.Context) {
	h.membershipAction(c, h.memberships.AddWish)
}

// Unwish godoc
// @Summary Drop a course from the wishlist
// @Tags Membership
// @Param id path int true "Course ID"
// @Success 204
// @Router /courses/{id}/wish [delete]
func (h *CourseHandler) Unwish(c *gin.Context) {
	h.membershipAction(c, h.memberships.RemoveWish)
}

// Complete godoc
// @Summary Mark a course as completed
// @Tags Membership
// @Param id path int true "Course ID"
// @Success 204
// @Router /courses/{id}/complete [post]
func (h *CourseHandler) Complete(c *gin.Context) {
	h.membershipAction(c, h.memberships.Complete)
}

type banRequest struct {
	UserID int `json:"user_id" validate:"required"`
}

// Ban godoc
// @Summary Exclude a user from a course
// @Tags Membership
// @Accept json
// @Param id path int true "Course ID"
// @Success 204
// @Router /courses/{id}/ban [post]
func (h *CourseHandler) Ban(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req banRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.memberships.Ban(c.Request.Context(), req.UserID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Unban godoc
// @Summary Lift a course exclusion
// @Tags Membership
// @Accept json
// @Param id path int true "Course ID"
// @Success 204
// @Router /courses/{id}/ban [delete]
func (h *CourseHandler) Unban(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req banRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.memberships.Unban(c.Request.Context(), req.UserID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SubmitReview godoc
// @Summary Rate a course
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param payload body service.SubmitReviewRequest true "Review payload"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/reviews [post]
func (h *CourseHandler) SubmitReview(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	review, err := h.memberships.SubmitReview(c.Request.Context(), userID, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, review)
}

// ListReviews godoc
// @Summary List a course's reviews
// @Tags Reviews
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/reviews [get]
func (h *CourseHandler) ListReviews(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	reviews, err := h.memberships.Reviews(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reviews, nil)
}

// Report godoc
// @Summary Report a course; the report at the threshold cancels it
// @Tags Courses
// @Param id path int true "Course ID"
// @Success 204
// @Router /courses/{id}/report [post]
func (h *CourseHandler) Report(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.reports.RaiseReport(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Certificate godoc
// @Summary Download the completion certificate for a finished course
// @Tags Courses
// @Produce jpeg
// @Param id path int true "Course ID"
// @Success 200
// @Router /courses/{id}/certificate [get]
func (h *CourseHandler) Certificate(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	data, err := h.certificates.Generate(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", data)
}

func (h *CourseHandler) membershipAction(c *gin.Context, action func(ctx context.Context, userID, courseID int) error) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := action(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

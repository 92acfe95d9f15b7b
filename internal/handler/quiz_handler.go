package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bittutor/bittutor-api/internal/service"
	appErrors "github.com/bittutor/bittutor-api/pkg/errors"
	"github.com/bittutor/bittutor-api/pkg/response"
)

// QuizHandler exposes quiz and result endpoints.
type QuizHandler struct {
	quizzes *service.QuizService
}

// NewQuizHandler constructs QuizHandler.
func NewQuizHandler(quizzes *service.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

// Create godoc
// @Summary Add a quiz to a course
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param payload body service.CreateQuizRequest true "Quiz payload"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/quizzes [post]
func (h *QuizHandler) Create(c *gin.Context) {
	courseID, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	quiz, err := h.quizzes.Create(c.Request.Context(), courseID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, quiz)
}

// Available godoc
// @Summary Quizzes on a course the caller has not yet fully passed
// @Tags Quizzes
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/quizzes [get]
func (h *QuizHandler) Available(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	courseID, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	quizzes, err := h.quizzes.Available(c.Request.Context(), courseID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, quizzes, nil)
}

// AddQuestion godoc
// @Summary Append a question to a quiz
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param quizId path int true "Quiz ID"
// @Param payload body service.AddQuestionRequest true "Question payload"
// @Success 201 {object} response.Envelope
// @Router /quizzes/{quizId}/questions [post]
func (h *QuizHandler) AddQuestion(c *gin.Context) {
	quizID, err := intParam(c, "quizId")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.AddQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	question, err := h.quizzes.AddQuestion(c.Request.Context(), quizID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, question)
}

// Questions godoc
// @Summary List a quiz's questions in order
// @Tags Quizzes
// @Produce json
// @Param quizId path int true "Quiz ID"
// @Success 200 {object} response.Envelope
// @Router /quizzes/{quizId}/questions [get]
func (h *QuizHandler) Questions(c *gin.Context) {
	quizID, err := intParam(c, "quizId")
	if err != nil {
		response.Error(c, err)
		return
	}
	questions, err := h.quizzes.Questions(c.Request.Context(), quizID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, questions, nil)
}

type submitResultRequest struct {
	// Answers maps question numbers to the chosen option tag.
	Answers map[int]string `json:"answers" validate:"required"`
}

// SubmitResult godoc
// @Summary Grade and record the caller's quiz attempt
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param quizId path int true "Quiz ID"
// @Success 200 {object} response.Envelope
// @Router /quizzes/{quizId}/results [post]
func (h *QuizHandler) SubmitResult(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	quizID, err := intParam(c, "quizId")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req submitResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.quizzes.RegisterResult(c.Request.Context(), quizID, userID, req.Answers)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Result godoc
// @Summary The caller's recorded score on a quiz
// @Tags Quizzes
// @Produce json
// @Param quizId path int true "Quiz ID"
// @Success 200 {object} response.Envelope
// @Router /quizzes/{quizId}/results [get]
func (h *QuizHandler) Result(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	quizID, err := intParam(c, "quizId")
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.quizzes.Result(c.Request.Context(), quizID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bittutor/bittutor-api/internal/middleware"
	"github.com/bittutor/bittutor-api/internal/models"
	appErrors "github.com/bittutor/bittutor-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.AccessClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.AccessClaims)
	if !ok {
		return nil
	}
	return claims
}

// currentUserID returns the authenticated user's id, or an unauthorized error
// when the route was reached without claims.
func currentUserID(c *gin.Context) (int, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return 0, appErrors.ErrUnauthorized
	}
	return claims.UserID, nil
}

// intParam parses a numeric path parameter.
func intParam(c *gin.Context, name string) (int, error) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+" parameter")
	}
	return value, nil
}

// imageUpload reads a raw image body plus its extension from the "ext" query
// parameter (default jpg).
func imageUpload(c *gin.Context) (data []byte, ext string, err error) {
	data, err = c.GetRawData()
	if err != nil || len(data) == 0 {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "image body required")
	}
	ext = c.DefaultQuery("ext", "jpg")
	return data, ext, nil
}

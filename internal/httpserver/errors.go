package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"orgbanking/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	kindBadRequest   = "bad_request"
	kindUnauthorized = "unauthorized"
	kindForbidden    = "forbidden"
	kindNotFound     = "not_found"
	kindConflict     = "conflict"
	kindValidation   = "validation_failed"
	kindInternal     = "internal"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// respondError maps domain errors onto status codes. Unclassified errors are
// logged and reported without detail.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, errorBody{Kind: kindForbidden, Message: "not a member of this organization"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody{Kind: kindNotFound, Message: "resource not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, errorBody{Kind: kindValidation, Message: verr.Error()})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, errorBody{Kind: kindValidation, Message: err.Error()})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, errorBody{Kind: kindConflict, Message: "resource already exists"})
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, errorBody{Kind: kindInternal, Message: "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorBody{Kind: kindBadRequest, Message: msg})
}

// queryInt reads a non-negative integer query parameter, returning def when
// it is absent.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		badRequest(c, name+" must be a non-negative integer")
		return 0, false
	}
	return v, true
}

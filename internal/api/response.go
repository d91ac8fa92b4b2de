package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lalith-99/tasklane/internal/middleware"
	"github.com/lalith-99/tasklane/internal/service"
	"go.uber.org/zap"
)

// envelope is the body of every resource response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

func respondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, envelope{Success: true, Message: message, Data: data})
}

// respondError writes the uniform failure body. Internal errors are logged
// with their cause and reach the client only as a generic message.
func respondError(c *gin.Context, err error) {
	status := service.StatusCode(err)
	if status >= http.StatusInternalServerError {
		middleware.Logger(c).Error("request failed", zap.Error(err))
		_ = c.Error(err)
	}
	c.JSON(status, envelope{Success: false, Message: service.PublicMessage(err)})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{Success: false, Message: message})
}

// principal returns the authenticated caller. Routes using it always run
// behind AuthMiddleware, so a missing principal is a wiring bug.
func principal(c *gin.Context) (service.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, envelope{Success: false, Message: "Not authenticated"})
	}
	return p, ok
}

// uuidParam parses the path parameter name and writes a 400 on failure.
func uuidParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondBadRequest(c, "invalid "+label+" id")
		return uuid.Nil, false
	}
	return id, true
}

// pageQuery is embedded in every list query.
type pageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

func (q pageQuery) request() service.PageRequest {
	return service.PageRequest{Page: q.Page, Limit: q.Limit}
}

// bindMessage turns a binding failure into a client-facing message that
// names the offending JSON field.
func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			return field + " is required"
		case "email":
			return field + " must be a valid email"
		case "min":
			return fmt.Sprintf("%s must be at least %s", field, fe.Param())
		case "max":
			return fmt.Sprintf("%s must be at most %s", field, fe.Param())
		case "oneof":
			return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
		case "uuid":
			return field + " must be a valid id"
		}
		return field + " is invalid"
	}
	return "Invalid request"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

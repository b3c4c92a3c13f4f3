package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator wraps go-playground/validator to implement echo.Validator.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// AuthRequest is the gate form. Blank fields are rejected by the gateway so
// the user gets the same message on every client.
type AuthRequest struct {
	Mode     string `form:"mode"`
	Username string `form:"username"`
	Password string `form:"password"`
}

// SendMessageRequest is the composer form.
type SendMessageRequest struct {
	Content string `form:"content"`
}

// ListMessagesRequest is the query of GET /api/messages.
type ListMessagesRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=50"`
}

// GatePageRequest is the query of GET /.
type GatePageRequest struct {
	Mode string `query:"mode" validate:"omitempty,oneof=login signup"`
}

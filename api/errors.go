package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"taskman-api/domain"
)

// writeError converts a domain error to its HTTP response. Every failure path
// ends here, nothing escapes as a 500 unless genuinely unexpected.
func writeError(c echo.Context, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, verr.Fields)
	}
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return c.JSON(http.StatusNotFound, errorBody{Error: nf.Error()})
	}
	var terr *domain.TokenError
	if errors.As(err, &terr) {
		return c.JSON(http.StatusBadRequest, errorBody{Error: terr.Reason})
	}
	if errors.Is(err, domain.ErrPermissionDenied) {
		return c.JSON(http.StatusForbidden, errorBody{Error: "you do not have permission to perform this action"})
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

type errorBody struct {
	Error string `json:"error"`
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorBody{Error: msg})
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, errorBody{Error: msg})
}

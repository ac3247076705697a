package api

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"taskman-api/domain"
)

func subjectForUser(user *domain.User) string {
	return strconv.FormatUint(uint64(user.ID), 10)
}

// currentUser resolves the caller from the Authorization header. A missing
// header yields (nil, nil): read endpoints stay open to anonymous callers.
// A present but invalid token is an error.
func currentUser(c echo.Context, auth Authenticator, users UserStore) (*domain.User, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil, nil
	}
	sub, err := auth.UserIDFromAuthHeader(header)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return nil, errors.New("unknown token subject")
	}
	user, err := users.ByID(c.Request().Context(), uint(id))
	if err != nil {
		return nil, errors.New("unknown token subject")
	}
	return user, nil
}

// requireUser resolves the caller and fails when the request carries no valid
// identity. Used by every mutating endpoint.
func requireUser(c echo.Context, auth Authenticator, users UserStore) (*domain.User, error) {
	user, err := currentUser(c, auth, users)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errMissingAuthorization
	}
	return user, nil
}

// canMutate is the object-level owner-or-admin policy shared by task and
// subtask detail endpoints.
func canMutate(user *domain.User, ownerID *uint) bool {
	if user == nil {
		return false
	}
	if user.IsAdmin {
		return true
	}
	return ownerID != nil && *ownerID == user.ID
}

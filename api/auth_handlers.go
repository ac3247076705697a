package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"taskman-api/domain"
)

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func registerUser(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req registerRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, err.Error())
		}
		if req.Username == "" {
			return writeError(c, domain.NewValidationError("username", "username is required"))
		}
		if req.Password != req.Password2 {
			return writeError(c, domain.NewValidationError("password", "passwords do not match"))
		}
		if err := domain.ValidatePassword(req.Password, domain.DefaultPasswordRules); err != nil {
			return writeError(c, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return writeError(c, err)
		}
		user := domain.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: string(hash),
		}
		if err := d.Users.Create(c.Request().Context(), &user); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, user)
	}
}

func issueToken(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req credentialsRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, err.Error())
		}
		user, err := d.Users.ByUsername(c.Request().Context(), req.Username)
		if err != nil {
			return unauthorized(c, "invalid username or password")
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			return unauthorized(c, "invalid username or password")
		}
		pair, err := d.Tokens.IssuePair(user)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, pair)
	}
}

func refreshToken(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req refreshRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, err.Error())
		}
		if req.Refresh == "" {
			return badRequest(c, "refresh token is required")
		}
		claims, err := d.Tokens.ParseRefresh(req.Refresh)
		if err != nil {
			return writeError(c, err)
		}
		revoked, err := d.Blacklist.Contains(c.Request().Context(), claims.JTI)
		if err != nil {
			return writeError(c, err)
		}
		if revoked {
			return writeError(c, &domain.TokenError{Reason: "token is blacklisted"})
		}
		access, err := d.Tokens.IssueAccess(claims.Subject)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]string{"access": access})
	}
}

func logout(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := requireUser(c, d.Auth, d.Users); err != nil {
			return unauthorized(c, err.Error())
		}
		var req refreshRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, err.Error())
		}
		if req.Refresh == "" {
			return badRequest(c, "refresh token is required")
		}
		claims, err := d.Tokens.ParseRefresh(req.Refresh)
		if err != nil {
			return writeError(c, err)
		}
		revoked, err := d.Blacklist.Contains(c.Request().Context(), claims.JTI)
		if err != nil {
			return writeError(c, err)
		}
		if revoked {
			return writeError(c, &domain.TokenError{Reason: "token is blacklisted"})
		}
		ttl := int64(time.Until(claims.Expires) / time.Second)
		if err := d.Blacklist.Add(c.Request().Context(), claims.JTI, ttl); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusResetContent)
	}
}

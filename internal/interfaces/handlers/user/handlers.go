package user

import (
	"errors"
	"strconv"

	usersvc "dutchie-backend/internal/application/user"
	"dutchie-backend/internal/middleware"
	"dutchie-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const userSessionsPrefix = "user_sessions:"

// Handlers holds the user service and session config for signup (session + cookie).
type Handlers struct {
	Service *usersvc.Service
	Rdb     *redis.Client
	Config  middleware.SessionConfig
}

// Signup POST /api/v1/users/signup: create member, start a session, set cookie, return 201 with data.user.
func (h *Handlers) Signup(c *fiber.Ctx) error {
	var req usersvc.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, usersvc.ErrMissingFields.Error(), fiber.StatusBadRequest, nil)
	}

	u, err := h.Service.Signup(c.Context(), req)
	if err != nil {
		return mapSignupError(c, err)
	}

	userID := strconv.FormatUint(u.UserID, 10)
	sid := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:   userID,
		Nickname: u.Nickname,
		Email:    u.Email,
	})
	if h.Rdb != nil {
		_ = h.Rdb.SAdd(c.Context(), userSessionsPrefix+userID, sid).Err()
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sid
	c.Cookie(&cookie)

	return response.SuccessCreated(c, "User created successfully", fiber.Map{
		"user": fiber.Map{
			"user_id":   userID,
			"nickname":  u.Nickname,
			"email":     u.Email,
			"createdAt": u.CreatedAt,
		},
	}, nil)
}

// CheckNickname GET /api/v1/users/nickname?nickname=: reports whether the nickname can be taken.
func (h *Handlers) CheckNickname(c *fiber.Ctx) error {
	ok, err := h.Service.NicknameAvailable(c.Context(), c.Query("nickname"))
	if err != nil {
		return mapSignupError(c, err)
	}
	return response.Success(c, "Nickname checked", fiber.Map{"available": ok}, nil)
}

func mapSignupError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usersvc.ErrMissingFields), errors.Is(err, usersvc.ErrInvalidEmail),
		errors.Is(err, usersvc.ErrInvalidPassword), errors.Is(err, usersvc.ErrInvalidNickname):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, usersvc.ErrEmailTaken), errors.Is(err, usersvc.ErrNicknameTaken):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("user: storage failure")
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

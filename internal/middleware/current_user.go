package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/culturallm/backend/internal/dto"
	"github.com/culturallm/backend/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	UserIDHeader = "X-User-ID"
	userIDKey    = "userID"
)

// RequireUser resolves the acting user from the X-User-ID header and rejects
// the request with 401 when it is missing, malformed, unknown or inactive.
func RequireUser(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserIDHeader)
		id, err := strconv.ParseUint(raw, 10, 32)
		if raw == "" || err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Missing or invalid " + UserIDHeader + " header"})
			return
		}

		user, err := users.FindByID(c.Request.Context(), uint(id))
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Unknown user"})
			return
		case err != nil:
			log.Error().Err(err).Uint64("userID", id).Msg("Failed to resolve current user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to resolve user", Details: []string{err.Error()}})
			return
		case !user.IsActive:
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "User is not active"})
			return
		}

		c.Set(userIDKey, user.ID)
		c.Next()
	}
}

// CurrentUserID returns the id stored by RequireUser, or 0 outside it.
func CurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

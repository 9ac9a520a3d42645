package controller

import (
	"net/http"

	"github.com/culturallm/backend/internal/dto"
	"github.com/culturallm/backend/internal/service"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService service.UserService
}

func NewUserController(us service.UserService) *UserController {
	return &UserController{userService: us}
}

// Register godoc
// @Summary Register a user
// @Tags Users
// @Accept json
// @Produce json
// @Param user body dto.RegisterUserRequest true "User data"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 409 {object} dto.ErrorResponse "Username or email taken"
// @Router /users [post]
func (c *UserController) Register(ctx *gin.Context) {
	var req dto.RegisterUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body", err)
		return
	}

	user, err := c.userService.Register(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err, "Failed to register user")
		return
	}
	ctx.JSON(http.StatusCreated, user)
}

// GetUser godoc
// @Summary Get a user with level progress
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		badRequest(ctx, "Invalid user ID", nil)
		return
	}

	user, err := c.userService.GetUser(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err, "User not found")
		return
	}
	ctx.JSON(http.StatusOK, user)
}

// Leaderboard godoc
// @Summary Top users by score
// @Tags Users
// @Produce json
// @Param limit query int false "Number of entries (default 10)"
// @Success 200 {array} dto.LeaderboardEntry
// @Router /leaderboard [get]
func (c *UserController) Leaderboard(ctx *gin.Context) {
	var q dto.LimitQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		badRequest(ctx, "Invalid limit", err)
		return
	}

	board, err := c.userService.Leaderboard(ctx.Request.Context(), q.Limit)
	if err != nil {
		respondError(ctx, err, "Failed to load leaderboard")
		return
	}
	ctx.JSON(http.StatusOK, board)
}

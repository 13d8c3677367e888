package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/garyai/picks-api/internal/handler/dto"
	"github.com/garyai/picks-api/internal/service"
)

// UserHandler обрабатывает запросы, связанные с пользователями
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// UpdateProfileRequest представляет запрос на обновление профиля
type UpdateProfileRequest struct {
	Username       string `json:"username" binding:"omitempty,min=3,max=50"`
	ProfilePicture string `json:"profile_picture" binding:"omitempty,url"`
}

// GetMe возвращает профиль текущего пользователя
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetUserByID(currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe обновляет профиль текущего пользователя
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateProfile(currentUserID(c), req.Username, req.ProfilePicture)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetMyStats возвращает статистику текущего пользователя
func (h *UserHandler) GetMyStats(c *gin.Context) {
	stats, err := h.userService.GetStats(currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStatsResponse(stats))
}

// GetUserStats возвращает статистику пользователя по ID (публичный профиль)
func (h *UserHandler) GetUserStats(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	stats, err := h.userService.GetStats(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStatsResponse(stats))
}

// GetMyDecisions возвращает решения текущего пользователя
func (h *UserHandler) GetMyDecisions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	decisions, total, err := h.userService.ListDecisions(currentUserID(c), page, pageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	decisionDTOs := make([]*dto.DecisionDTO, len(decisions))
	for i := range decisions {
		decisionDTOs[i] = toDecisionDTO(&decisions[i])
	}

	c.JSON(http.StatusOK, dto.PaginatedDecisionsResponse{
		Decisions: decisionDTOs,
		Total:     total,
		Page:      page,
		PerPage:   pageSize,
	})
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/garyai/picks-api/internal/handler/dto"
	"github.com/garyai/picks-api/internal/service"
)

// PickHandler обрабатывает запросы, связанные с пиками
type PickHandler struct {
	pickService *service.PickService
}

// NewPickHandler создает новый обработчик пиков
func NewPickHandler(pickService *service.PickService) *PickHandler {
	return &PickHandler{
		pickService: pickService,
	}
}

// GetTodaysPicks возвращает пики на сегодня
func (h *PickHandler) GetTodaysPicks(c *gin.Context) {
	picks, err := h.pickService.GetTodaysPicks()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	pickDTOs := make([]*dto.PickDTO, len(picks))
	for i := range picks {
		pickDTOs[i] = toPickDTO(&picks[i])
	}
	c.JSON(http.StatusOK, gin.H{"picks": pickDTOs})
}

// ListPicks возвращает пики с пагинацией
func (h *PickHandler) ListPicks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	picks, total, err := h.pickService.ListPicks(page, pageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	pickDTOs := make([]*dto.PickDTO, len(picks))
	for i := range picks {
		pickDTOs[i] = toPickDTO(&picks[i])
	}

	c.JSON(http.StatusOK, dto.PaginatedPicksResponse{
		Picks:   pickDTOs,
		Total:   total,
		Page:    page,
		PerPage: pageSize,
	})
}

// GetPick возвращает пик по ID
func (h *PickHandler) GetPick(c *gin.Context) {
	pickID := c.MustGet("pickID").(uint)

	pick, err := h.pickService.GetPickByID(pickID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPickDTO(pick))
}

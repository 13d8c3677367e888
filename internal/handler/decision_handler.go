package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyai/picks-api/internal/service"
)

// DecisionHandler обрабатывает запросы записи решений ride/fade
type DecisionHandler struct {
	decisionService *service.DecisionService
}

// NewDecisionHandler создает новый обработчик решений
func NewDecisionHandler(decisionService *service.DecisionService) *DecisionHandler {
	return &DecisionHandler{
		decisionService: decisionService,
	}
}

// RecordDecisionRequest представляет запрос на запись решения
type RecordDecisionRequest struct {
	DecisionType string `json:"decision_type" binding:"required,oneof=ride fade"`
}

// RecordDecision записывает решение текущего пользователя по пику
func (h *DecisionHandler) RecordDecision(c *gin.Context) {
	pickID := c.MustGet("pickID").(uint)

	var req RecordDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	decision, err := h.decisionService.RecordDecision(currentUserID(c), pickID, req.DecisionType)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toDecisionDTO(decision))
}

// GetMyDecisionForPick возвращает решение текущего пользователя по пику
func (h *DecisionHandler) GetMyDecisionForPick(c *gin.Context) {
	pickID := c.MustGet("pickID").(uint)

	decision, err := h.decisionService.GetDecision(currentUserID(c), pickID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDecisionDTO(decision))
}

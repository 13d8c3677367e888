package handler

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/garyai/picks-api/internal/domain/entity"
	"github.com/garyai/picks-api/internal/domain/repository"
	"github.com/garyai/picks-api/internal/service"
	"github.com/garyai/picks-api/internal/service/grader"
	"github.com/garyai/picks-api/internal/websocket"
)

// AdminHandler обрабатывает административные запросы: создание пиков,
// ввод результатов, ручной запуск сверки, экспорт отчетов
type AdminHandler struct {
	pickService  *service.PickService
	reconciler   *grader.Reconciler
	statsRepo    repository.StatsRepository
	decisionRepo repository.DecisionRepository
	wsManager    *websocket.Manager
}

// NewAdminHandler создает новый административный обработчик
func NewAdminHandler(
	pickService *service.PickService,
	reconciler *grader.Reconciler,
	statsRepo repository.StatsRepository,
	decisionRepo repository.DecisionRepository,
	wsManager *websocket.Manager,
) *AdminHandler {
	return &AdminHandler{
		pickService:  pickService,
		reconciler:   reconciler,
		statsRepo:    statsRepo,
		decisionRepo: decisionRepo,
		wsManager:    wsManager,
	}
}

// CreatePickRequest представляет запрос на создание пика
type CreatePickRequest struct {
	Sport      string    `json:"sport" binding:"required"`
	League     string    `json:"league" binding:"omitempty,max=50"`
	Matchup    string    `json:"matchup" binding:"required,max=200"`
	PickTeam   string    `json:"pick_team" binding:"required,max=100"`
	Odds       string    `json:"odds" binding:"omitempty,max=20"`
	Confidence float64   `json:"confidence" binding:"omitempty,min=0,max=1"`
	Analysis   string    `json:"analysis" binding:"omitempty,max=5000"`
	GameTime   time.Time `json:"game_time" binding:"required"`
	ExternalID string    `json:"external_id" binding:"omitempty,max=100"`
}

// PostGameResultRequest представляет запрос на ввод результата игры
type PostGameResultRequest struct {
	Result     string `json:"result" binding:"required,oneof=win loss push"`
	FinalScore string `json:"final_score" binding:"omitempty,max=100"`
}

// CreatePick создает новый пик
func (h *AdminHandler) CreatePick(c *gin.Context) {
	var req CreatePickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pick, err := h.pickService.CreatePick(&entity.Pick{
		Sport:      req.Sport,
		League:     req.League,
		Matchup:    req.Matchup,
		PickTeam:   req.PickTeam,
		Odds:       req.Odds,
		Confidence: req.Confidence,
		Analysis:   req.Analysis,
		GameTime:   req.GameTime,
		ExternalID: req.ExternalID,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if h.wsManager != nil {
		if err := h.wsManager.BroadcastEvent(websocket.PICK_CREATED, toPickDTO(pick)); err != nil {
			log.Printf("[AdminHandler] Ошибка отправки события о новом пике: %v", err)
		}
	}

	c.JSON(http.StatusCreated, toPickDTO(pick))
}

// PostGameResult записывает результат игры для пика и запускает сверку
func (h *AdminHandler) PostGameResult(c *gin.Context) {
	pickID := c.MustGet("pickID").(uint)

	var req PostGameResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.reconciler.RecordGameResult(c.Request.Context(), pickID, req.Result, req.FinalScore)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// TriggerReconcile запускает проход сверки вручную
func (h *AdminHandler) TriggerReconcile(c *gin.Context) {
	processed, err := h.reconciler.ReconcilePending(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"processed": processed})
}

// ExportLeaderboardXLSX выгружает полную таблицу лидеров в Excel
func (h *AdminHandler) ExportLeaderboardXLSX(c *gin.Context) {
	// Без пагинации: отчет целиком
	entries, _, err := h.statsRepo.GetLeaderboard(100000, 0)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("leaderboard_%s", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Лидерборд"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[AdminHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"Место", "Пользователь", "Решений", "Побед", "Поражений", "Доля побед", "Серия"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[AdminHandler] Ошибка записи заголовков: %v", err)
	}

	for i, entry := range entries {
		rowNum := i + 2
		cell := fmt.Sprintf("A%d", rowNum)
		row := []interface{}{
			i + 1,
			sanitizeForExcel(entry.Username),
			entry.TotalPicks,
			entry.WinCount,
			entry.LossCount,
			fmt.Sprintf("%.1f%%", entry.WinRate*100),
			entry.CurrentStreak,
		}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[AdminHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[AdminHandler] Ошибка при Flush: %v", err)
	}
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[AdminHandler] Ошибка записи Excel в response: %v", err)
	}
}

// ExportPickDecisionsXLSX выгружает все решения по пику в Excel
func (h *AdminHandler) ExportPickDecisionsXLSX(c *gin.Context) {
	pickID := c.MustGet("pickID").(uint)

	pick, err := h.pickService.GetPickByID(pickID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	decisions, err := h.decisionRepo.ListByPick(pickID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("pick_%d_decisions", pickID)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Решения"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[AdminHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	if err := sw.SetRow("A1", []interface{}{"Матч", sanitizeForExcel(pick.Matchup)}); err != nil {
		log.Printf("[AdminHandler] Ошибка записи заголовка пика: %v", err)
	}
	headers := []interface{}{"ID решения", "ID пользователя", "Решение", "Обработано", "Результат", "Создано"}
	if err := sw.SetRow("A2", headers); err != nil {
		log.Printf("[AdminHandler] Ошибка записи заголовков: %v", err)
	}

	for i, d := range decisions {
		rowNum := i + 3
		cell := fmt.Sprintf("A%d", rowNum)
		processed := "Нет"
		if d.Processed {
			processed = "Да"
		}
		result := ""
		if d.Result != nil {
			result = *d.Result
		}
		row := []interface{}{d.ID, d.UserID, d.DecisionType, processed, result, d.CreatedAt.Format(time.RFC3339)}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[AdminHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[AdminHandler] Ошибка при Flush: %v", err)
	}
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[AdminHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

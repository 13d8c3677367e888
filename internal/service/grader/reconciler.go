package grader

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/garyai/picks-api/internal/domain/entity"
	"github.com/garyai/picks-api/internal/domain/repository"
	apperrors "github.com/garyai/picks-api/internal/pkg/errors"
)

// Reconciler сверяет решения пользователей с результатами игр
type Reconciler struct {
	config *Config
	deps   *Dependencies
}

// NewReconciler создает новый компонент сверки
func NewReconciler(config *Config, deps *Dependencies) *Reconciler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Reconciler{
		config: config,
		deps:   deps,
	}
}

// RecordGameResult записывает финальный результат игры для пика и сразу
// прогоняет сверку по его решениям. Повторная запись результата для того же
// пика — no-op: первый записанный результат остается истиной.
func (r *Reconciler) RecordGameResult(ctx context.Context, pickID uint, gameResult, finalScore string) (*entity.GameResult, error) {
	if !entity.IsValidGameResult(gameResult) {
		return nil, fmt.Errorf("game result must be win, loss or push: %w", apperrors.ErrValidation)
	}

	pick, err := r.deps.PickRepo.GetByID(pickID)
	if err != nil {
		return nil, err
	}

	result := &entity.GameResult{
		PickID:     pickID,
		Result:     gameResult,
		Matchup:    pick.Matchup,
		FinalScore: finalScore,
	}

	inserted, err := r.deps.GameResultRepo.Insert(result)
	if err != nil {
		return nil, fmt.Errorf("failed to insert game result: %w", err)
	}
	if !inserted {
		log.Printf("[Reconciler] Результат для пика ID=%d уже записан, повтор игнорируется", pickID)
		stored, err := r.deps.GameResultRepo.GetByPickID(pickID)
		if err != nil {
			return nil, err
		}
		result = stored
	} else {
		log.Printf("[Reconciler] Записан результат %s для пика ID=%d (%s)", gameResult, pickID, pick.Matchup)
	}

	// Смена статуса выполняется и в ветке повтора: прошлый вызов мог упасть
	// между записью результата и этим UPDATE, оставив пик в pending и
	// открытым для новых решений по уже сыгранной игре
	if err := r.deps.PickRepo.MarkGraded(r.deps.DB, pickID); err != nil {
		return nil, fmt.Errorf("failed to mark pick graded: %w", err)
	}

	if _, err := r.ReconcilePending(ctx); err != nil {
		// Сверка догонит на следующем проходе
		log.Printf("[Reconciler] Ошибка сверки после записи результата пика ID=%d: %v", pickID, err)
	}

	return result, nil
}

// ReconcilePending обрабатывает необработанные решения, для чьих пиков уже
// записан результат. Возвращает количество обработанных решений.
// Каждое решение обрабатывается в отдельной транзакции: ошибка одного не
// откатывает остальные, а условный UPDATE processed=false делает повторный
// проход по тому же решению безвредным.
func (r *Reconciler) ReconcilePending(ctx context.Context) (int, error) {
	pending, err := r.deps.DecisionRepo.ListPendingWithResults(r.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending decisions: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	processed := 0
	for _, item := range pending {
		select {
		case <-ctx.Done():
			return processed, ctx.Err()
		default:
		}

		if err := r.reconcileOne(ctx, item); err != nil {
			log.Printf("[Reconciler] Ошибка обработки решения ID=%d: %v", item.Decision.ID, err)
			continue
		}
		processed++
	}

	if processed > 0 {
		log.Printf("[Reconciler] Проход сверки завершен: обработано %d решений", processed)
		if r.deps.Notifier != nil {
			// Сигнал клиентам перечитать таблицу лидеров
			if err := r.deps.Notifier.BroadcastEvent("leaderboard:update", map[string]interface{}{
				"graded": processed,
			}); err != nil {
				log.Printf("[Reconciler] Ошибка broadcast после прохода сверки: %v", err)
			}
		}
	}
	return processed, nil
}

// reconcileOne обрабатывает одно решение: помечает его обработанным и
// применяет исход к статистике пользователя в одной транзакции
func (r *Reconciler) reconcileOne(ctx context.Context, item repository.PendingDecision) error {
	outcome, err := DecisionOutcome(item.Decision.DecisionType, item.Result.Result)
	if err != nil {
		return err
	}

	var updatedStats *entity.UserStats
	err = r.deps.DB.Transaction(func(tx *gorm.DB) error {
		stats, txErr := r.gradeDecisionTx(tx, item, outcome)
		if txErr != nil {
			return txErr
		}
		updatedStats = stats
		return nil
	})
	if err != nil {
		return err
	}

	// Уведомления только после коммита
	r.notify(ctx, item, outcome, updatedStats)
	return nil
}

// gradeDecisionTx — транзакционный шаг сверки: условно помечает решение
// обработанным и применяет исход к статистике. Возвращает nil-статистику,
// если решение уже сверено конкурентным проходом или исход push.
func (r *Reconciler) gradeDecisionTx(tx *gorm.DB, item repository.PendingDecision, outcome string) (*entity.UserStats, error) {
	marked, err := r.deps.DecisionRepo.MarkProcessedTx(tx, item.Decision.ID, outcome)
	if err != nil {
		return nil, err
	}
	if !marked {
		// Уже обработано конкурентным проходом
		return nil, nil
	}

	// Push закрывает решение, не трогая статистику
	if outcome == entity.OutcomePush {
		return nil, nil
	}

	return r.deps.StatsRepo.ApplyOutcomeTx(tx, item.Decision.UserID, outcome == entity.OutcomeWin)
}

// notify отправляет пользователю WebSocket-событие и письмо о результате
func (r *Reconciler) notify(ctx context.Context, item repository.PendingDecision, outcome string, stats *entity.UserStats) {
	data := map[string]interface{}{
		"decision_id": item.Decision.ID,
		"pick_id":     item.Decision.PickID,
		"matchup":     item.Result.Matchup,
		"final_score": item.Result.FinalScore,
		"result":      outcome,
	}
	if stats != nil {
		data["current_streak"] = stats.CurrentStreak
		data["win_count"] = stats.WinCount
		data["loss_count"] = stats.LossCount
	}

	if r.deps.Notifier != nil {
		if err := r.deps.Notifier.SendEventToUser(item.Decision.UserID, "decision:graded", data); err != nil {
			log.Printf("[Reconciler] Ошибка отправки WS-события пользователю ID=%d: %v", item.Decision.UserID, err)
		}
	}

	if r.deps.EmailSender == nil || outcome == entity.OutcomePush {
		return
	}

	user, err := r.deps.UserRepo.GetByID(item.Decision.UserID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[Reconciler] Ошибка получения пользователя ID=%d для письма: %v", item.Decision.UserID, err)
		}
		return
	}

	// Детерминированный ключ защищает от дублей при повторной доставке
	idempotencyKey := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("decision-graded-%d", item.Decision.ID))).String()
	if err := r.deps.EmailSender.SendDecisionGraded(ctx, user.Email, item.Result.Matchup, outcome, idempotencyKey); err != nil {
		log.Printf("[Reconciler] Ошибка отправки письма пользователю ID=%d: %v", item.Decision.UserID, err)
	}
}

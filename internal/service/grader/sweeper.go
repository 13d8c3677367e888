package grader

import (
	"context"
	"log"
	"time"
)

// Sweeper периодически запускает сверку решений в фоне. Подхватывает
// решения, оставшиеся необработанными после записи результата (падение
// процесса, ошибка отдельного решения), и логирует зависшие пики.
type Sweeper struct {
	config     *Config
	reconciler *Reconciler
	deps       *Dependencies
}

// NewSweeper создает новый фоновый процесс сверки
func NewSweeper(config *Config, reconciler *Reconciler, deps *Dependencies) *Sweeper {
	if config == nil {
		config = DefaultConfig()
	}
	return &Sweeper{
		config:     config,
		reconciler: reconciler,
		deps:       deps,
	}
}

// Run запускает цикл сверки. Блокирует до отмены контекста.
func (s *Sweeper) Run(ctx context.Context) {
	interval := s.config.SweepInterval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	log.Printf("[Sweeper] Фоновая сверка запущена, интервал %v", interval)

	// Стартовый проход: добираем решения, не обработанные до рестарта
	if _, err := s.reconciler.ReconcilePending(ctx); err != nil {
		log.Printf("[Sweeper] Ошибка стартового прохода сверки: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.reconciler.ReconcilePending(ctx); err != nil {
				log.Printf("[Sweeper] Ошибка прохода сверки: %v", err)
			}
			s.reportStalePicks()
		case <-ctx.Done():
			log.Println("[Sweeper] Фоновая сверка остановлена")
			return
		}
	}
}

// reportStalePicks логирует пики, чьи игры давно начались, а результата
// все нет. Сигнал для оператора, что фид отстает.
func (s *Sweeper) reportStalePicks() {
	cutoff := time.Now().Add(-s.config.PendingAfter)
	stale, err := s.deps.PickRepo.ListPendingStartedBefore(cutoff)
	if err != nil {
		log.Printf("[Sweeper] Ошибка поиска зависших пиков: %v", err)
		return
	}
	for _, pick := range stale {
		log.Printf("[Sweeper] Пик ID=%d (%s) без результата спустя %v после начала игры", pick.ID, pick.Matchup, s.config.PendingAfter)
	}
}

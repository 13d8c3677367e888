package main

import (
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/garyai/picks-api/internal/config"
	"github.com/garyai/picks-api/internal/domain/entity"
	pgRepo "github.com/garyai/picks-api/internal/repository/postgres"
	"github.com/garyai/picks-api/pkg/database"
)

// Пересобирает таблицу user_stats из журнала решений: счетчики решений
// из всех записей, исходы и серии - повтором сверенных решений в порядке
// их обработки. Запускать при расхождении счетчиков или после ручных
// правок в user_decisions.
func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgresDB(
		cfg.Database.PostgresConnectionString(),
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	decisionRepo := pgRepo.NewDecisionRepo(db)

	// Счетчики решений по всем записям журнала
	type decisionCounts struct {
		UserID    uint
		Total     int64
		RideCount int64
		FadeCount int64
	}
	var counts []decisionCounts
	err = db.Model(&entity.UserDecision{}).
		Select(`user_id,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE decision_type = ?) AS ride_count,
			COUNT(*) FILTER (WHERE decision_type = ?) AS fade_count`,
			entity.DecisionRide, entity.DecisionFade).
		Group("user_id").
		Scan(&counts).Error
	if err != nil {
		log.Fatalf("Failed to aggregate decision counts: %v", err)
	}

	statsByUser := make(map[uint]*entity.UserStats, len(counts))
	for _, c := range counts {
		statsByUser[c.UserID] = &entity.UserStats{
			UserID:     c.UserID,
			TotalPicks: c.Total,
			RideCount:  c.RideCount,
			FadeCount:  c.FadeCount,
		}
	}

	// Повтор сверенных исходов в порядке обработки восстанавливает
	// win/loss счетчики, серии и последние результаты
	processed, err := decisionRepo.ListProcessedOrdered()
	if err != nil {
		log.Fatalf("Failed to load processed decisions: %v", err)
	}

	replayed := 0
	for _, d := range processed {
		if d.Result == nil || *d.Result == entity.OutcomePush {
			continue
		}
		stats, ok := statsByUser[d.UserID]
		if !ok {
			// Счетчики агрегировались из той же таблицы, такого быть не должно
			log.Printf("Processed decision %d references user %d without counts, skipping", d.ID, d.UserID)
			continue
		}
		stats.ApplyOutcome(*d.Result == entity.OutcomeWin)
		replayed++
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("TRUNCATE user_stats").Error; err != nil {
			return err
		}
		for _, stats := range statsByUser {
			if err := tx.Create(stats).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to write rebuilt stats: %v", err)
	}

	log.Printf("Rebuilt stats for %d users from %d processed decisions", len(statsByUser), replayed)
}

package postgres

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/garyai/picks-api/internal/domain/entity"
	"github.com/garyai/picks-api/internal/domain/repository"
	apperrors "github.com/garyai/picks-api/internal/pkg/errors"
)

// StatsRepo реализует repository.StatsRepository
type StatsRepo struct {
	db *gorm.DB
}

// NewStatsRepo создает новый репозиторий статистики
func NewStatsRepo(db *gorm.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// GetByUserID возвращает статистику пользователя
func (r *StatsRepo) GetByUserID(userID uint) (*entity.UserStats, error) {
	var stats entity.UserStats
	err := r.db.Where("user_id = ?", userID).First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &stats, nil
}

// EnsureRowTx создает строку статистики пользователя, если ее еще нет
func (r *StatsRepo) EnsureRowTx(tx *gorm.DB, userID uint) error {
	return tx.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&entity.UserStats{UserID: userID}).
		Error
}

// AdjustCountsTx относительно меняет счетчики решений. Используется
// записью решения (total +1, ride/fade +1) и сменой типа (ride -1, fade +1).
// Относительные обновления через gorm.Expr не теряют конкурентные инкременты.
func (r *StatsRepo) AdjustCountsTx(tx *gorm.DB, userID uint, deltaTotal, deltaRide, deltaFade int64) error {
	return tx.Model(&entity.UserStats{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"total_picks": gorm.Expr("total_picks + ?", deltaTotal),
			"ride_count":  gorm.Expr("ride_count + ?", deltaRide),
			"fade_count":  gorm.Expr("fade_count + ?", deltaFade),
		}).Error
}

// ApplyOutcomeTx применяет исход (win/loss) к статистике пользователя.
// Строка блокируется FOR UPDATE: переход серии зависит от предыдущего
// состояния, поэтому исходы одного пользователя применяются строго
// последовательно.
func (r *StatsRepo) ApplyOutcomeTx(tx *gorm.DB, userID uint, isWin bool) (*entity.UserStats, error) {
	if err := r.EnsureRowTx(tx, userID); err != nil {
		return nil, err
	}

	var stats entity.UserStats
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&stats).Error
	if err != nil {
		return nil, err
	}

	stats.ApplyOutcome(isWin)

	if err := tx.Save(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetLeaderboard возвращает страницу таблицы лидеров.
// Сортировка: win_rate DESC, total_picks DESC, user_id ASC.
// Пользователи без обработанных решений идут в конце (win_rate считается 0,
// при равенстве нулевой total_picks отправляет их ниже).
func (r *StatsRepo) GetLeaderboard(limit, offset int) ([]repository.LeaderboardEntry, int64, error) {
	var total int64
	if err := r.db.Model(&entity.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []repository.LeaderboardEntry
	err := r.db.
		Table("users").
		Select(`users.id AS user_id,
			users.username,
			users.profile_picture,
			COALESCE(user_stats.total_picks, 0) AS total_picks,
			COALESCE(user_stats.win_count, 0) AS win_count,
			COALESCE(user_stats.loss_count, 0) AS loss_count,
			COALESCE(user_stats.current_streak, 0) AS current_streak,
			CASE
				WHEN COALESCE(user_stats.win_count, 0) + COALESCE(user_stats.loss_count, 0) = 0 THEN 0
				ELSE user_stats.win_count::float / (user_stats.win_count + user_stats.loss_count)
			END AS win_rate`).
		Joins("LEFT JOIN user_stats ON user_stats.user_id = users.id").
		Order("win_rate DESC, total_picks DESC, user_id ASC").
		Limit(limit).
		Offset(offset).
		Scan(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

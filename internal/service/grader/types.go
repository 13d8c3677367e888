package grader

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/garyai/picks-api/internal/domain/repository"
)

// Константы по умолчанию
const (
	DefaultBatchSize     = 500
	DefaultSweepInterval = time.Minute
	DefaultPendingAfter  = 4 * time.Hour
)

// Config содержит настройки сверки решений
type Config struct {
	// SweepInterval: интервал между фоновыми проходами сверки
	SweepInterval time.Duration

	// BatchSize: максимум решений, обрабатываемых за один проход
	BatchSize int

	// PendingAfter: сколько ждать после начала игры, прежде чем
	// логировать пик как зависший без результата
	PendingAfter time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		SweepInterval: DefaultSweepInterval,
		BatchSize:     DefaultBatchSize,
		PendingAfter:  DefaultPendingAfter,
	}
}

// Notifier определяет интерфейс для уведомления пользователей через WebSocket
type Notifier interface {
	SendEventToUser(userID uint, eventType string, data interface{}) error
	BroadcastEvent(eventType string, data interface{}) error
}

// EmailSender определяет интерфейс отправки писем, необходимый сверке
type EmailSender interface {
	SendDecisionGraded(ctx context.Context, toEmail, matchup, result, idempotencyKey string) error
}

// Dependencies содержит зависимости компонентов сверки
type Dependencies struct {
	DecisionRepo   repository.DecisionRepository
	PickRepo       repository.PickRepository
	StatsRepo      repository.StatsRepository
	UserRepo       repository.UserRepository
	GameResultRepo repository.GameResultRepository
	Notifier       Notifier
	EmailSender    EmailSender
	DB             *gorm.DB
	Config         *Config
}

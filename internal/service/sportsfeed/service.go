package sportsfeed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/garyai/picks-api/internal/domain/entity"
	"github.com/garyai/picks-api/internal/domain/repository"
	apperrors "github.com/garyai/picks-api/internal/pkg/errors"
	"github.com/garyai/picks-api/internal/service/grader"
)

// Service опрашивает внешний фид и скармливает финальные счета сверке.
// Пики связываются с играми фида через external_id.
type Service struct {
	client       *Client
	pickRepo     repository.PickRepository
	reconciler   *grader.Reconciler
	sports       []string
	pollInterval time.Duration
}

// NewService создает новый сервис фида
func NewService(
	client *Client,
	pickRepo repository.PickRepository,
	reconciler *grader.Reconciler,
	sports []string,
	pollInterval time.Duration,
) *Service {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Minute
	}
	return &Service{
		client:       client,
		pickRepo:     pickRepo,
		reconciler:   reconciler,
		sports:       sports,
		pollInterval: pollInterval,
	}
}

// Run запускает цикл опроса фида. Блокирует до отмены контекста.
func (s *Service) Run(ctx context.Context) {
	if len(s.sports) == 0 {
		log.Println("[SportsFeed] Список видов спорта пуст, опрос фида не запущен")
		return
	}

	log.Printf("[SportsFeed] Опрос фида запущен: %v, интервал %v", s.sports, s.pollInterval)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.SyncScores(ctx); err != nil {
				log.Printf("[SportsFeed] Ошибка синхронизации счетов: %v", err)
			}
		case <-ctx.Done():
			log.Println("[SportsFeed] Опрос фида остановлен")
			return
		}
	}
}

// SyncScores опрашивает все виды спорта параллельно и записывает результаты
// завершенных игр для соответствующих пиков
func (s *Service) SyncScores(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, sport := range s.sports {
		sport := sport
		g.Go(func() error {
			games, err := s.client.Scores(gctx, sport)
			if err != nil {
				return err
			}
			for _, game := range games {
				if !game.Completed {
					continue
				}
				if err := s.recordGame(gctx, game); err != nil {
					log.Printf("[SportsFeed] Ошибка записи результата игры %s: %v", game.ExternalID, err)
				}
			}
			return nil
		})
	}

	return g.Wait()
}

// recordGame находит пик по external_id игры и передает результат сверке
func (s *Service) recordGame(ctx context.Context, game Game) error {
	pick, err := s.pickRepo.GetByExternalID(game.ExternalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Игра без пика нам не интересна
			return nil
		}
		return err
	}
	if pick.IsGraded() {
		return nil
	}

	result, err := gameResultForPick(pick, game)
	if err != nil {
		return err
	}

	finalScore := fmt.Sprintf("%s %d - %s %d", game.AwayTeam, game.AwayScore, game.HomeTeam, game.HomeScore)
	if _, err := s.reconciler.RecordGameResult(ctx, pick.ID, result, finalScore); err != nil {
		return err
	}

	log.Printf("[SportsFeed] Записан результат %s для пика ID=%d (%s)", result, pick.ID, pick.Matchup)
	return nil
}

// gameResultForPick определяет исход пика по финальному счету.
// Пик выигрывает, когда выбранная команда побеждает; равный счет дает push.
func gameResultForPick(pick *entity.Pick, game Game) (string, error) {
	var picked, opponent int
	switch {
	case teamMatches(pick.PickTeam, game.HomeTeam):
		picked, opponent = game.HomeScore, game.AwayScore
	case teamMatches(pick.PickTeam, game.AwayTeam):
		picked, opponent = game.AwayScore, game.HomeScore
	default:
		return "", fmt.Errorf("pick team %q does not match game teams %q / %q", pick.PickTeam, game.HomeTeam, game.AwayTeam)
	}

	switch {
	case picked > opponent:
		return entity.OutcomeWin, nil
	case picked < opponent:
		return entity.OutcomeLoss, nil
	default:
		return entity.OutcomePush, nil
	}
}

func teamMatches(pickTeam, feedTeam string) bool {
	return strings.EqualFold(strings.TrimSpace(pickTeam), strings.TrimSpace(feedTeam))
}

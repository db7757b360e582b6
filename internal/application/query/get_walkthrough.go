// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/exchange-insight/exchange-insight/internal/domain/placement"
	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
	"github.com/exchange-insight/exchange-insight/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET WALKTHROUGH QUERY
// Оценивает шансы студента по каждому выбранному соглашению.
// Это главный запрос приложения: "куда я прохожу и каким номером".
// ══════════════════════════════════════════════════════════════════════════════

// GetWalkthroughQuery содержит параметры запроса.
type GetWalkthroughQuery struct {
	// StudentID - внутренний ID студента (UUID).
	StudentID string

	// Refresh - пересчитать, даже если снимок не изменился.
	Refresh bool
}

// WalkthroughResult - результат запроса.
type WalkthroughResult struct {
	StudentID string `json:"student_id"`

	// Estimates - по одной оценке на соглашение, в порядке предпочтений.
	Estimates []placement.Estimate `json:"estimates"`

	// ComputedAt - когда оценки были посчитаны.
	ComputedAt time.Time `json:"computed_at"`

	// FromCache - результат взят из кэша без пересчёта.
	FromCache bool `json:"from_cache"`

	// Throttled - пересчёт отклонён из-за слишком частых запросов.
	Throttled bool `json:"throttled"`
}

// ──────────────────────────────────────────────────────────────────────────────
// Зависимости
// ──────────────────────────────────────────────────────────────────────────────

// WalkthroughMemo - сохранённый результат вместе с отпечатком снимка.
type WalkthroughMemo struct {
	Fingerprint string
	ComputedAt  time.Time
	Estimates   []placement.Estimate
}

// WalkthroughCache - кэш результатов и ограничитель частоты пересчёта.
type WalkthroughCache interface {
	// Get возвращает сохранённый результат или nil, если его нет.
	Get(ctx context.Context, studentID string) (*WalkthroughMemo, error)

	// Set сохраняет результат.
	Set(ctx context.Context, studentID string, memo WalkthroughMemo) error

	// TryAcquireRefresh возвращает false, если пересчёт был меньше interval назад.
	TryAcquireRefresh(ctx context.Context, studentID string, interval time.Duration) (bool, error)

	// Fingerprint вычисляет отпечаток всех входных данных оценки.
	Fingerprint(s *placement.Snapshot) string
}

// WalkthroughConfig - настройки обработчика.
type WalkthroughConfig struct {
	// MaxParallel - сколько соглашений оцениваются одновременно.
	MaxParallel int

	// MinRefreshInterval - минимальный интервал между пересчётами для студента.
	MinRefreshInterval time.Duration
}

// DefaultWalkthroughConfig возвращает настройки по умолчанию.
func DefaultWalkthroughConfig() WalkthroughConfig {
	return WalkthroughConfig{
		MaxParallel:        8,
		MinRefreshInterval: 5 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetWalkthroughHandler обрабатывает запросы на оценку шансов.
type GetWalkthroughHandler struct {
	snapshots placement.SnapshotProvider
	cache     WalkthroughCache      // может быть nil: без кэша и без ограничения частоты
	publisher shared.EventPublisher // может быть nil
	config    WalkthroughConfig
	log       *logger.Logger
}

// NewGetWalkthroughHandler создаёт новый обработчик.
func NewGetWalkthroughHandler(
	snapshots placement.SnapshotProvider,
	cache WalkthroughCache,
	publisher shared.EventPublisher,
	config WalkthroughConfig,
	log *logger.Logger,
) *GetWalkthroughHandler {
	if config.MaxParallel < 1 {
		config.MaxParallel = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &GetWalkthroughHandler{
		snapshots: snapshots,
		cache:     cache,
		publisher: publisher,
		config:    config,
		log:       log.With(logger.Component("walkthrough")),
	}
}

// Handle выполняет запрос.
func (h *GetWalkthroughHandler) Handle(ctx context.Context, q GetWalkthroughQuery) (*WalkthroughResult, error) {
	id, err := shared.NewStudentID(q.StudentID)
	if err != nil {
		return nil, err
	}
	q.StudentID = id.String()
	log := h.log.With(logger.StudentID(q.StudentID))

	// 1. Сохранённый результат и право на пересчёт.
	// Без сохранённого результата считаем даже при исчерпанном лимите.
	memo := h.loadMemo(ctx, q.StudentID, log)
	if !h.acquireRefresh(ctx, q.StudentID, log) && memo != nil {
		return &WalkthroughResult{
			StudentID:  q.StudentID,
			Estimates:  memo.Estimates,
			ComputedAt: memo.ComputedAt,
			FromCache:  true,
			Throttled:  true,
		}, nil
	}

	// 2. Снимок данных. Ошибки провайдера возвращаем как есть.
	snap, err := h.snapshots.LoadSnapshot(ctx, q.StudentID)
	if err != nil {
		return nil, fmt.Errorf("get_walkthrough: load snapshot: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("get_walkthrough: %w", err)
	}

	// 3. Снимок не изменился - отдаём сохранённое.
	var fingerprint string
	if h.cache != nil {
		fingerprint = h.cache.Fingerprint(snap)
		if memo != nil && !q.Refresh && memo.Fingerprint == fingerprint {
			return &WalkthroughResult{
				StudentID:  q.StudentID,
				Estimates:  memo.Estimates,
				ComputedAt: memo.ComputedAt,
				FromCache:  true,
			}, nil
		}
	}

	// 4. Пересчёт.
	start := time.Now()
	estimates, err := h.estimate(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("get_walkthrough: %w", err)
	}
	took := time.Since(start)
	computedAt := time.Now().UTC()

	if h.cache != nil {
		err := h.cache.Set(ctx, q.StudentID, WalkthroughMemo{
			Fingerprint: fingerprint,
			ComputedAt:  computedAt,
			Estimates:   estimates,
		})
		if err != nil {
			log.Warn("failed to store walkthrough", logger.Err(err))
		}
	}

	log.Debug("walkthrough computed", logger.Count(len(estimates)), logger.Latency(took))
	h.publish(shared.NewWalkthroughComputedEvent(q.StudentID, len(estimates), countAdmitted(estimates), took), log)

	return &WalkthroughResult{
		StudentID:  q.StudentID,
		Estimates:  estimates,
		ComputedAt: computedAt,
	}, nil
}

// estimate оценивает соглашения параллельно. Оценщики чистые, поэтому
// единственная возможная ошибка - отмена контекста.
func (h *GetWalkthroughHandler) estimate(ctx context.Context, snap *placement.Snapshot) ([]placement.Estimate, error) {
	out := make([]placement.Estimate, len(snap.Standings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.config.MaxParallel)

	for i := range snap.Standings {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = snap.EstimateAt(i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// loadMemo читает кэш. Ошибки кэша не фатальны.
func (h *GetWalkthroughHandler) loadMemo(ctx context.Context, studentID string, log *logger.Logger) *WalkthroughMemo {
	if h.cache == nil {
		return nil
	}
	memo, err := h.cache.Get(ctx, studentID)
	if err != nil {
		log.Warn("failed to read walkthrough cache", logger.Err(err))
		return nil
	}
	return memo
}

// acquireRefresh при недоступном кэше разрешает пересчёт.
func (h *GetWalkthroughHandler) acquireRefresh(ctx context.Context, studentID string, log *logger.Logger) bool {
	if h.cache == nil {
		return true
	}
	ok, err := h.cache.TryAcquireRefresh(ctx, studentID, h.config.MinRefreshInterval)
	if err != nil {
		log.Warn("failed to acquire refresh slot", logger.Err(err))
		return true
	}
	return ok
}

func (h *GetWalkthroughHandler) publish(event shared.Event, log *logger.Logger) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(event); err != nil {
		log.Warn("failed to publish event", logger.String("event_type", string(event.EventType())), logger.Err(err))
	}
}

func countAdmitted(estimates []placement.Estimate) int {
	n := 0
	for _, e := range estimates {
		if v, _ := e.Primary(); v.Admitted {
			n++
		}
	}
	return n
}

// Package rates загружает и кэширует внешние табличные источники: нормативы
// трудозатрат по стадиям проектирования, ставки оплаты труда и ставки страхового взноса.
// Расчёт с частично загруженными данными не допускается: любая ошибка источника
// возвращается как DataUnavailableError или SchemaMismatchError.
package rates

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/apierrors"
	"github.com/zhukovvlad/designfee-go/cmd/pkg/logging"
)

// Config - адреса источников и время жизни кэша.
type Config struct {
	NormURLs     map[models.DesignPhase]string
	WagesURL     string
	InsuranceURL string
	TTL          time.Duration
}

// PhaseURLs переводит карту из конфигурации (стадия -> URL) в Config.NormURLs.
func PhaseURLs(m map[string]string) map[models.DesignPhase]string {
	out := make(map[models.DesignPhase]string, len(m))
	for k, v := range m {
		out[models.DesignPhase(k)] = v
	}
	return out
}

const (
	keyWages     = "wages"
	keyInsurance = "insurance"
	keyNormsPfx  = "norms:"
)

type cacheEntry struct {
	value     any
	fetchedAt time.Time
}

// Repository - кэш таблиц поверх Source. Таблицы кэшируются по ключу
// (стадия проектирования для нормативов) до истечения TTL или Invalidate.
type Repository struct {
	source Source
	cfg    Config
	logger *logging.Logger
	now    func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
	group singleflight.Group
}

// NewRepository создает новый экземпляр Repository
func NewRepository(source Source, cfg Config, logger *logging.Logger) *Repository {
	return &Repository{
		source: source,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		cache:  make(map[string]cacheEntry),
	}
}

// Bundle - все таблицы, нужные для одного расчёта.
type Bundle struct {
	Norms     models.NormTable
	Wages     models.WageTable
	Insurance models.InsuranceTable
}

// FetchStaffingNorms возвращает таблицу нормативов стадии.
func (r *Repository) FetchStaffingNorms(ctx context.Context, phase models.DesignPhase) (models.NormTable, error) {
	url, ok := r.cfg.NormURLs[phase]
	if !ok || url == "" {
		return models.NormTable{}, apierrors.NewDataUnavailableError(string(phase),
			errors.New("источник нормативов для стадии не настроен"))
	}

	v, err := r.load(ctx, keyNormsPfx+string(phase), url, func(data []byte) (any, error) {
		return ParseNormTable(phase, data)
	})
	if err != nil {
		return models.NormTable{}, err
	}
	return v.(models.NormTable), nil
}

// FetchWageTable возвращает ставки оплаты труда.
func (r *Repository) FetchWageTable(ctx context.Context) (models.WageTable, error) {
	v, err := r.load(ctx, keyWages, r.cfg.WagesURL, func(data []byte) (any, error) {
		return ParseWageTable(data)
	})
	if err != nil {
		return models.WageTable{}, err
	}
	return v.(models.WageTable), nil
}

// FetchInsuranceRates возвращает ставки страхового взноса.
func (r *Repository) FetchInsuranceRates(ctx context.Context) (models.InsuranceTable, error) {
	v, err := r.load(ctx, keyInsurance, r.cfg.InsuranceURL, func(data []byte) (any, error) {
		return ParseInsuranceTable(data)
	})
	if err != nil {
		return models.InsuranceTable{}, err
	}
	return v.(models.InsuranceTable), nil
}

// FetchAll параллельно загружает все таблицы для стадии. Ошибка любого источника
// прерывает остальные загрузки.
func (r *Repository) FetchAll(ctx context.Context, phase models.DesignPhase) (Bundle, error) {
	var b Bundle
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		b.Norms, err = r.FetchStaffingNorms(gctx, phase)
		return err
	})
	g.Go(func() error {
		var err error
		b.Wages, err = r.FetchWageTable(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		b.Insurance, err = r.FetchInsuranceRates(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return Bundle{}, err
	}
	return b, nil
}

// Invalidate сбрасывает кэш всех таблиц.
func (r *Repository) Invalidate() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.cache)
	r.cache = make(map[string]cacheEntry)
	r.logger.WithField("method", "Invalidate").Infof("Кэш таблиц очищен (%d записей)", n)
	return n
}

func (r *Repository) cached(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.cache[key]
	if !ok {
		return nil, false
	}
	if r.cfg.TTL > 0 && r.now().Sub(e.fetchedAt) > r.cfg.TTL {
		return nil, false
	}
	return e.value, true
}

// load возвращает значение из кэша или загружает и разбирает источник.
// Одновременные запросы одного ключа выполняют одну загрузку.
func (r *Repository) load(ctx context.Context, key, url string, parse func([]byte) (any, error)) (any, error) {
	if v, ok := r.cached(key); ok {
		return v, nil
	}

	logger := r.logger.WithField("method", "load").WithField("key", key)

	v, err, _ := r.group.Do(key, func() (any, error) {
		if v, ok := r.cached(key); ok {
			return v, nil
		}

		logger.Info("Загрузка таблицы из источника")
		data, err := r.source.Fetch(ctx, url)
		if err != nil {
			logger.Errorf("Источник недоступен: %v", err)
			return nil, apierrors.NewDataUnavailableError(key, err)
		}

		parsed, err := parse(data)
		if err != nil {
			logger.Errorf("Таблица не разобрана: %v", err)
			return nil, err
		}

		r.mu.Lock()
		r.cache[key] = cacheEntry{value: parsed, fetchedAt: r.now()}
		r.mu.Unlock()
		return parsed, nil
	})
	return v, err
}

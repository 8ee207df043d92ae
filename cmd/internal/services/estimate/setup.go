package estimate

import (
	"github.com/zhukovvlad/designfee-go/cmd/internal/config"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/cascade"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/labor"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/policy"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/rates"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/staffing"
	"github.com/zhukovvlad/designfee-go/cmd/pkg/logging"
)

// NewFromConfig собирает конвейер с HTTP-источником таблиц. Репозиторий
// возвращается отдельно: HTTP-слою он нужен для справочных таблиц и сброса кэша.
func NewFromConfig(cfg *config.Config, logger *logging.Logger) (*Service, *rates.Repository) {
	source := rates.NewHTTPSource(cfg.Sources.Timeout, cfg.Sources.RequestsPerSecond, logger)
	repo := rates.NewRepository(source, rates.Config{
		NormURLs:     rates.PhaseURLs(cfg.Sources.Norms),
		WagesURL:     cfg.Sources.WagesURL,
		InsuranceURL: cfg.Sources.InsuranceURL,
		TTL:          cfg.Sources.CacheTTL,
	}, logger)

	registry := policy.NewRegistry(policy.Options{
		LandscapeTechFeeIncludesExpense:     cfg.Policy.LandscapeTechFeeIncludesExpense,
		EnvironmentalTechFeeIncludesExpense: cfg.Policy.EnvironmentalTechFeeIncludesExpense,
	})
	periods := labor.PeriodPolicy{
		DefaultDuration: cfg.Policy.DefaultDurationDays,
		MinPeriod:       cfg.Policy.MinPeriod,
	}

	svc := NewService(
		repo,
		registry,
		staffing.NewEstimator(logger),
		labor.NewAggregator(periods, logger),
		cascade.NewCalculator(logger),
		logger,
	)
	return svc, repo
}

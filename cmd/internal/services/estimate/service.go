// Package estimate связывает этапы расчёта в один конвейер:
// нормативы -> трудозатраты -> затраты на оплату труда -> каскад накруток.
// Каждый этап читает неизменяемые входы и возвращает новую таблицу.
package estimate

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/cascade"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/labor"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/policy"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/rates"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/staffing"
	"github.com/zhukovvlad/designfee-go/cmd/pkg/logging"
)

// RateProvider - источник табличных данных (rates.Repository).
type RateProvider interface {
	FetchStaffingNorms(ctx context.Context, phase models.DesignPhase) (models.NormTable, error)
	FetchWageTable(ctx context.Context) (models.WageTable, error)
	FetchInsuranceRates(ctx context.Context) (models.InsuranceTable, error)
	FetchAll(ctx context.Context, phase models.DesignPhase) (rates.Bundle, error)
}

// ComputationContext - нормализованный профиль и выбранная политика вида услуг.
// Строится один раз на пересчёт и дальше не меняется.
type ComputationContext struct {
	Profile   models.ServiceTypeProfile
	Policy    policy.ServiceDomainPolicy
	Fallbacks []string
}

// Result - результат полного прогона конвейера.
type Result struct {
	Profile     models.ServiceTypeProfile    `json:"profile"`
	Fallbacks   []string                     `json:"fallbacks,omitempty"`
	Staffing    []models.AdjustedStaffingRow `json:"staffing"`
	Labor       models.LaborBreakdown        `json:"labor"`
	Estimate    models.ContractEstimate      `json:"estimate"`
	ServiceCost float64                      `json:"service_cost"`

	Wages     models.WageTable      `json:"-"`
	Insurance models.InsuranceTable `json:"-"`
}

// Service - конвейер расчёта.
type Service struct {
	rates      RateProvider
	registry   *policy.Registry
	estimator  *staffing.Estimator
	aggregator *labor.Aggregator
	calculator *cascade.Calculator
	logger     *logging.Logger
}

// NewService создает новый экземпляр Service
func NewService(
	rates RateProvider,
	registry *policy.Registry,
	estimator *staffing.Estimator,
	aggregator *labor.Aggregator,
	calculator *cascade.Calculator,
	logger *logging.Logger,
) *Service {
	return &Service{
		rates:      rates,
		registry:   registry,
		estimator:  estimator,
		aggregator: aggregator,
		calculator: calculator,
		logger:     logger,
	}
}

// Registry возвращает реестр политик (для справочников формы).
func (s *Service) Registry() *policy.Registry {
	return s.registry
}

// NewContext выбирает политику и нормализует профиль. Если вид услуг не указан,
// он определяется по стадии проектирования.
func (s *Service) NewContext(profile models.ServiceTypeProfile) (ComputationContext, error) {
	if profile.Category == "" {
		if c, ok := s.registry.PhaseCategory(profile.Phase); ok {
			profile.Category = c
		}
	}
	pol, err := s.registry.For(profile.Category)
	if err != nil {
		return ComputationContext{}, err
	}
	normalized, fallbacks, err := policy.Normalize(pol, profile)
	if err != nil {
		return ComputationContext{}, err
	}
	if len(fallbacks) > 0 {
		s.logger.WithField("method", "NewContext").Infof("Недопустимые значения заменены: %v", fallbacks)
	}
	return ComputationContext{Profile: normalized, Policy: pol, Fallbacks: fallbacks}, nil
}

// Staffing загружает нормативы стадии и применяет коэффициенты.
func (s *Service) Staffing(ctx context.Context, cc ComputationContext) ([]models.AdjustedStaffingRow, error) {
	norms, err := s.rates.FetchStaffingNorms(ctx, cc.Profile.Phase)
	if err != nil {
		return nil, err
	}
	return s.estimator.Adjust(norms, cc.Profile, cc.Policy)
}

// DefaultPeriods - периоды по умолчанию для тарифицируемых строк.
func (s *Service) DefaultPeriods(rows []models.AdjustedStaffingRow) map[int]int {
	return s.aggregator.Periods().DefaultPeriods(rows)
}

// Labor загружает ставки и считает затраты на оплату труда.
func (s *Service) Labor(
	ctx context.Context,
	cc ComputationContext,
	rows []models.AdjustedStaffingRow,
	periods map[int]int,
) (models.LaborBreakdown, error) {
	wages, err := s.rates.FetchWageTable(ctx)
	if err != nil {
		return models.LaborBreakdown{}, err
	}
	return s.aggregator.Aggregate(rows, periods, wages, cc.Policy.WageCategory())
}

// Cascade считает смету с базой технического сбора по политике вида услуг.
func (s *Service) Cascade(
	cc ComputationContext,
	directLabor float64,
	inputs models.CostCascadeInputs,
) (models.ContractEstimate, error) {
	return s.calculator.Compute(directLabor, inputs, cc.Policy.TechFeeIncludesDirectExpense())
}

// Run выполняет весь конвейер для одного запроса. Таблицы загружаются
// параллельно до начала расчёта; ошибка любого источника прерывает прогон.
func (s *Service) Run(
	ctx context.Context,
	profile models.ServiceTypeProfile,
	periods map[int]int,
	inputs models.CostCascadeInputs,
) (Result, error) {
	cc, err := s.NewContext(profile)
	if err != nil {
		return Result{}, err
	}

	logger := s.logger.WithFields(logrus.Fields{
		"method":   "Run",
		"category": cc.Profile.Category,
		"phase":    cc.Profile.Phase,
	})

	bundle, err := s.rates.FetchAll(ctx, cc.Profile.Phase)
	if err != nil {
		logger.Errorf("Не удалось загрузить таблицы: %v", err)
		return Result{}, err
	}

	rows, err := s.estimator.Adjust(bundle.Norms, cc.Profile, cc.Policy)
	if err != nil {
		return Result{}, fmt.Errorf("трудозатраты: %w", err)
	}

	breakdown, err := s.aggregator.Aggregate(rows, periods, bundle.Wages, cc.Policy.WageCategory())
	if err != nil {
		return Result{}, fmt.Errorf("затраты на оплату труда: %w", err)
	}

	est, err := s.Cascade(cc, breakdown.TotalDirectLabor, inputs)
	if err != nil {
		return Result{}, fmt.Errorf("каскад накруток: %w", err)
	}

	logger.Infof("Расчёт выполнен: сумма договора %.2f", est.ContractAmount)
	return Result{
		Profile:     cc.Profile,
		Fallbacks:   cc.Fallbacks,
		Staffing:    rows,
		Labor:       breakdown,
		Estimate:    est,
		ServiceCost: cascade.ServiceCost(est.ContractAmount),
		Wages:       bundle.Wages,
		Insurance:   bundle.Insurance,
	}, nil
}

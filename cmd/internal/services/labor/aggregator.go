package labor

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/apierrors"
	"github.com/zhukovvlad/designfee-go/cmd/pkg/logging"
)

// SummaryLabel - метка итоговой строки, всегда первой в разбивке.
const SummaryLabel = "총계"

// Ключевые слова меток задач, период которых задаётся количеством раз.
var frequencyDefaults = []struct {
	keyword string
	count   int
}{
	{"위원회 심의", 1},
	{"관계기관 협의", 1},
	{"주민설명회", 2},
}

// PeriodPolicy задаёт значения периода по умолчанию и нижнюю границу.
type PeriodPolicy struct {
	// DefaultDuration - длительность в днях для задач без особого правила
	DefaultDuration int
	// MinPeriod - минимально допустимый период (0 или 1 в зависимости от ревизии методики)
	MinPeriod int
}

// DefaultPeriod возвращает период строки до ввода пользователя.
func (p PeriodPolicy) DefaultPeriod(row models.StaffingNormRow) int {
	if row.IsLumpSum() {
		return 1
	}
	for _, f := range frequencyDefaults {
		if strings.Contains(row.TaskLabel, f.keyword) {
			return f.count
		}
	}
	return p.DefaultDuration
}

// DefaultPeriods возвращает периоды по умолчанию для всех тарифицируемых строк.
func (p PeriodPolicy) DefaultPeriods(rows []models.AdjustedStaffingRow) map[int]int {
	out := make(map[int]int, len(rows))
	for _, r := range rows {
		if !r.Billable() {
			continue
		}
		out[r.RowID] = p.DefaultPeriod(r.StaffingNormRow)
	}
	return out
}

// Aggregator сводит скорректированные трудозатраты со ставками оплаты труда.
type Aggregator struct {
	periods PeriodPolicy
	logger  *logging.Logger
}

// NewAggregator создает новый экземпляр Aggregator
func NewAggregator(periods PeriodPolicy, logger *logging.Logger) *Aggregator {
	return &Aggregator{periods: periods, logger: logger}
}

// Periods возвращает политику периодов агрегатора.
func (a *Aggregator) Periods() PeriodPolicy {
	return a.periods
}

// Aggregate считает стоимость каждой тарифицируемой строки:
//
//	rowCost = round(Σ quantity[grade] × rate[grade] × period, 2)
//
// Строки без единицы измерения не участвуют. Отсутствующие в periods строки
// получают период по умолчанию; для «식» период всегда 1.
// Квалификация без ставки даёт нулевой вклад и предупреждение в журнале.
func (a *Aggregator) Aggregate(
	rows []models.AdjustedStaffingRow,
	periods map[int]int,
	wages models.WageTable,
	category models.WorkCategory,
) (models.LaborBreakdown, error) {
	logger := a.logger.WithFields(logrus.Fields{
		"method":   "Aggregate",
		"category": category,
	})

	if len(rows) == 0 {
		return models.LaborBreakdown{}, apierrors.NewPrerequisiteMissingError("сначала рассчитайте трудозатраты")
	}
	if _, ok := wages.Rates[category]; !ok {
		return models.LaborBreakdown{}, apierrors.NewPrerequisiteMissingError("ставки оплаты труда для вида работ %q не загружены", category)
	}

	for id, p := range periods {
		if p < a.periods.MinPeriod {
			return models.LaborBreakdown{}, apierrors.NewValidationError(
				"период для строки %d должен быть не меньше %d, получено: %d", id, a.periods.MinPeriod, p)
		}
	}

	missing := make(map[models.Grade]struct{})
	out := make([]models.LaborRow, 1, len(rows)+1)
	total := decimal.Zero

	for _, row := range rows {
		if !row.Billable() {
			continue
		}

		period := a.resolvePeriod(row, periods)
		daily := decimal.Zero
		quantities := make(map[models.Grade]float64, len(models.Grades))
		for _, grade := range models.Grades {
			q := row.Quantities[grade]
			quantities[grade] = q
			rate, ok := wages.Rate(category, grade)
			if !ok {
				if q != 0 {
					missing[grade] = struct{}{}
				}
				continue
			}
			daily = daily.Add(decimal.NewFromFloat(q).Mul(decimal.NewFromFloat(rate)))
		}

		cost := daily.Mul(decimal.NewFromInt(int64(period))).Round(2)
		total = total.Add(cost)
		out = append(out, models.LaborRow{
			RowID:      row.RowID,
			TaskLabel:  row.TaskLabel,
			Total:      cost.InexactFloat64(),
			Quantities: quantities,
			Period:     period,
		})
	}

	if len(missing) > 0 {
		grades := make([]string, 0, len(missing))
		for g := range missing {
			grades = append(grades, string(g))
		}
		sort.Strings(grades)
		logger.Warnf("Нет ставки для квалификаций %v, их вклад принят равным 0", grades)
	}

	totalValue := total.Round(2).InexactFloat64()
	out[0] = models.LaborRow{
		RowID:     -1,
		TaskLabel: SummaryLabel,
		Total:     totalValue,
		IsSummary: true,
	}

	logger.Infof("Прямые затраты на оплату труда: %.2f (%d строк)", totalValue, len(out)-1)
	return models.LaborBreakdown{Rows: out, TotalDirectLabor: totalValue}, nil
}

func (a *Aggregator) resolvePeriod(row models.AdjustedStaffingRow, periods map[int]int) int {
	if row.IsLumpSum() {
		return 1
	}
	if p, ok := periods[row.RowID]; ok {
		return p
	}
	return a.periods.DefaultPeriod(row.StaffingNormRow)
}

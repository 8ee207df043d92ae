package staffing

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/apierrors"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/policy"
	"github.com/zhukovvlad/designfee-go/cmd/internal/util"
	"github.com/zhukovvlad/designfee-go/cmd/pkg/logging"
)

// Estimator применяет коэффициенты α₁, α₂·α₃ и понижающий коэффициент повторного
// использования к базовой таблице трудозатрат.
type Estimator struct {
	logger *logging.Logger
}

// NewEstimator создает новый экземпляр Estimator
func NewEstimator(logger *logging.Logger) *Estimator {
	return &Estimator{logger: logger}
}

// Adjust возвращает новую таблицу скорректированных трудозатрат.
// Исходная таблица norms не изменяется; каждый вызов считает заново от базовых значений.
// Профиль должен быть предварительно нормализован policy.Normalize.
func (e *Estimator) Adjust(
	norms models.NormTable,
	profile models.ServiceTypeProfile,
	pol policy.ServiceDomainPolicy,
) ([]models.AdjustedStaffingRow, error) {
	logger := e.logger.WithFields(logrus.Fields{
		"method":   "Adjust",
		"phase":    norms.Phase,
		"category": pol.Category(),
	})

	if profile.Area <= 0 {
		return nil, apierrors.NewValidationError("площадь должна быть положительной, получено: %v", profile.Area)
	}
	if len(norms.Rows) == 0 {
		return nil, apierrors.NewPrerequisiteMissingError("таблица нормативов для стадии %q пуста", norms.Phase)
	}

	a2 := pol.SiteCoefficient(profile)
	a3 := pol.DifficultyCoefficient(profile.SiteCharacter, profile.Difficulty)
	logger.Infof("Расчёт трудозатрат: площадь %.0f м², α₂=%.3f, α₃=%.3f, повторное использование=%t",
		profile.Area, a2, a3, profile.PriorPhaseReuse)

	result := make([]models.AdjustedStaffingRow, 0, len(norms.Rows))
	for _, row := range norms.Rows {
		adjusted := models.AdjustedStaffingRow{
			StaffingNormRow: copyNormRow(row),
			Quantities:      make(map[models.Grade]float64, len(models.Grades)),
			Traces:          make(map[models.Grade]string, len(models.Grades)),
		}

		// Заголовки разделов и сноски не тарифицируются
		if !row.Billable() {
			result = append(result, adjusted)
			continue
		}

		factors := rowFactors(row, profile, pol, a2, a3)
		for _, grade := range models.Grades {
			base := row.Base[grade]
			v := base
			for _, f := range factors {
				v *= f
			}
			adjusted.Quantities[grade] = util.Round2(v)
			adjusted.Traces[grade] = formatTrace(base, factors)
		}
		result = append(result, adjusted)
	}

	return result, nil
}

// rowFactors возвращает цепочку множителей строки в порядке применения.
func rowFactors(
	row models.StaffingNormRow,
	profile models.ServiceTypeProfile,
	pol policy.ServiceDomainPolicy,
	a2, a3 float64,
) []float64 {
	var factors []float64
	if row.AppliesArea {
		factors = append(factors, pol.AreaCoefficient(profile.Area, row))
	}
	if row.AppliesCorrection && !pol.ExcludedFromCorrection(row.TaskLabel) {
		factors = append(factors, a2, a3)
	}
	if profile.PriorPhaseReuse && strings.HasPrefix(row.HierarchyCode(), pol.ReusePrefix()) {
		factors = append(factors, policy.ReuseFactor)
	}
	return factors
}

// formatTrace: «2 × 1.000 × 1.100 × 1.000»; без множителей - только базовое значение.
func formatTrace(base float64, factors []float64) string {
	if len(factors) == 0 {
		return util.FormatPlain(base)
	}
	parts := make([]string, len(factors))
	for i, f := range factors {
		parts[i] = fmt.Sprintf("%.3f", f)
	}
	return util.FormatPlain(base) + " × " + strings.Join(parts, " × ")
}

func copyNormRow(row models.StaffingNormRow) models.StaffingNormRow {
	out := row
	out.Base = make(map[models.Grade]float64, len(row.Base))
	for k, v := range row.Base {
		out.Base[k] = v
	}
	return out
}

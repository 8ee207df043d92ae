package server

import (
	"strings"

	"github.com/zhukovvlad/designfee-go/cmd/internal/api_models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/session"
)

// toProfile переводит запрос в профиль; нормализация выполняется политикой.
func toProfile(p api_models.ProfileRequest) models.ServiceTypeProfile {
	factors := make([]models.EnvFactor, 0, len(p.EnvFactors))
	for _, f := range p.EnvFactors {
		if f = strings.TrimSpace(f); f != "" {
			factors = append(factors, models.EnvFactor(f))
		}
	}
	return models.ServiceTypeProfile{
		Category:        models.ServiceCategory(strings.TrimSpace(p.Category)),
		Phase:           models.DesignPhase(strings.TrimSpace(p.Phase)),
		SiteCharacter:   models.SiteCharacter(strings.TrimSpace(p.SiteCharacter)),
		Difficulty:      models.Difficulty(strings.TrimSpace(p.Difficulty)),
		Area:            p.Area,
		PriorPhaseReuse: p.PriorPhaseReuse,
		EnvFactors:      factors,
	}
}

// toCascade накладывает заданные в запросе ставки на base.
func toCascade(req *api_models.CascadeRequest, base models.CostCascadeInputs) models.CostCascadeInputs {
	if req == nil {
		return base
	}
	out := base
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&out.OverheadRatePercent, req.OverheadRatePercent)
	set(&out.DirectExpenseAmount, req.DirectExpenseAmount)
	set(&out.TechnicalFeeRatePercent, req.TechnicalFeeRatePercent)
	set(&out.InsuranceRatePercent, req.InsuranceRatePercent)
	set(&out.VATRatePercent, req.VATRatePercent)
	return out
}

func toFormInputs(req api_models.InputsRequest) session.FormInputs {
	return session.FormInputs{
		ProjectName: strings.TrimSpace(req.ProjectName),
		Agency:      strings.TrimSpace(req.Agency),
		Profile:     toProfile(req.Profile),
		Cascade:     toCascade(req.Cascade, models.DefaultCostCascadeInputs()),
	}
}

// newPeriodRows - периоды тарифицируемых строк: введённые пользователем
// поверх значений по умолчанию.
func newPeriodRows(rows []models.AdjustedStaffingRow, defaults, entered map[int]int) []api_models.PeriodRow {
	out := make([]api_models.PeriodRow, 0, len(defaults))
	for _, r := range rows {
		def, ok := defaults[r.RowID]
		if !ok {
			continue
		}
		p := def
		if v, ok := entered[r.RowID]; ok && !r.IsLumpSum() {
			p = v
		}
		out = append(out, api_models.PeriodRow{
			RowID:     r.RowID,
			TaskLabel: r.TaskLabel,
			Unit:      r.Unit,
			Period:    p,
			Fixed:     r.IsLumpSum(),
		})
	}
	return out
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

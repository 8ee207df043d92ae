// Package session хранит пошаговое состояние расчёта одного пользователя:
// введённые значения формы и производные таблицы каждого этапа.
// Любое изменение входа этапа очищает результаты последующих этапов.
package session

import (
	"time"

	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
)

// DefaultArea - площадь в форме до ввода пользователя, м².
const DefaultArea = 100.0

// FormInputs - значения формы «기초입력» и ставки каскада.
type FormInputs struct {
	ProjectName string                    `json:"project_name"`
	Agency      string                    `json:"agency"`
	Profile     models.ServiceTypeProfile `json:"profile"`
	Cascade     models.CostCascadeInputs  `json:"cascade"`
}

// DefaultInputs - значения, которые видит пользователь в новой сессии и после сброса.
func DefaultInputs() FormInputs {
	return FormInputs{
		Profile: models.ServiceTypeProfile{
			Category:      models.CategoryLandscape,
			Phase:         models.PhaseBasic,
			SiteCharacter: models.SiteUrbanPark,
			Difficulty:    models.DifficultyNormal,
			Area:          DefaultArea,
		},
		Cascade: models.DefaultCostCascadeInputs(),
	}
}

// Ключи состояния сессии.
const (
	KeyInputs          = "inputs"
	KeyStaffing        = "staffing"
	KeyPeriods         = "periods"
	KeyLabor           = "labor"
	KeyEstimate        = "estimate"
	KeyConfirmedAmount = "confirmed_amount"
)

// Session - состояние одного пользователя. Отсутствующее значение (nil) означает
// «ключ не задан»: при чтении используется значение по умолчанию.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// Revision растёт с каждым сохранённым изменением.
	Revision int64 `json:"revision"`

	Inputs          *FormInputs                  `json:"inputs,omitempty"`
	Staffing        []models.AdjustedStaffingRow `json:"staffing,omitempty"`
	Periods         map[int]int                  `json:"periods,omitempty"`
	Labor           *models.LaborBreakdown       `json:"labor,omitempty"`
	Estimate        *models.ContractEstimate     `json:"estimate,omitempty"`
	ConfirmedAmount *float64                     `json:"confirmed_amount,omitempty"`
}

// EffectiveInputs возвращает введённые значения или значения по умолчанию.
func (s *Session) EffectiveInputs() FormInputs {
	if s.Inputs == nil {
		return DefaultInputs()
	}
	return *s.Inputs
}

// Keys возвращает заданные ключи состояния.
func (s *Session) Keys() []string {
	var keys []string
	if s.Inputs != nil {
		keys = append(keys, KeyInputs)
	}
	if s.Staffing != nil {
		keys = append(keys, KeyStaffing)
	}
	if s.Periods != nil {
		keys = append(keys, KeyPeriods)
	}
	if s.Labor != nil {
		keys = append(keys, KeyLabor)
	}
	if s.Estimate != nil {
		keys = append(keys, KeyEstimate)
	}
	if s.ConfirmedAmount != nil {
		keys = append(keys, KeyConfirmedAmount)
	}
	return keys
}

// SetInputs заменяет значения формы; все производные таблицы устаревают.
func (s *Session) SetInputs(in FormInputs) {
	s.Inputs = &in
	s.Staffing = nil
	s.Periods = nil
	s.clearFromLabor()
}

// SetStaffing сохраняет трудозатраты. Введённые периоды сохраняются только
// для строк, которые остались в таблице.
func (s *Session) SetStaffing(rows []models.AdjustedStaffingRow) {
	s.Staffing = rows
	if s.Periods != nil {
		kept := make(map[int]int, len(s.Periods))
		for _, r := range rows {
			if p, ok := s.Periods[r.RowID]; ok && r.Billable() {
				kept[r.RowID] = p
			}
		}
		s.Periods = kept
	}
	s.clearFromLabor()
}

// SetLabor сохраняет периоды и разбивку затрат на оплату труда.
func (s *Session) SetLabor(periods map[int]int, breakdown models.LaborBreakdown) {
	s.Periods = periods
	s.Labor = &breakdown
	s.Estimate = nil
	s.ConfirmedAmount = nil
}

// SetEstimate сохраняет смету; подтверждение прежней суммы снимается.
func (s *Session) SetEstimate(est models.ContractEstimate) {
	s.Estimate = &est
	s.ConfirmedAmount = nil
}

// Confirm фиксирует сумму договора («산출 완료»). Выгрузка доступна только после этого.
func (s *Session) Confirm() bool {
	if s.Estimate == nil {
		return false
	}
	amount := s.Estimate.ContractAmount
	s.ConfirmedAmount = &amount
	return true
}

// Reset удаляет все введённые и производные значения.
func (s *Session) Reset() {
	s.Inputs = nil
	s.Staffing = nil
	s.Periods = nil
	s.clearFromLabor()
}

func (s *Session) clearFromLabor() {
	s.Labor = nil
	s.Estimate = nil
	s.ConfirmedAmount = nil
}

// clone возвращает независимую копию верхнего уровня: таблицы этапов
// не изменяются после сохранения, поэтому копируются только контейнеры.
func (s *Session) clone() *Session {
	out := *s
	if s.Inputs != nil {
		in := *s.Inputs
		in.Profile.EnvFactors = append([]models.EnvFactor(nil), s.Inputs.Profile.EnvFactors...)
		out.Inputs = &in
	}
	if s.Staffing != nil {
		out.Staffing = append([]models.AdjustedStaffingRow(nil), s.Staffing...)
	}
	if s.Periods != nil {
		out.Periods = make(map[int]int, len(s.Periods))
		for k, v := range s.Periods {
			out.Periods[k] = v
		}
	}
	if s.Labor != nil {
		l := *s.Labor
		out.Labor = &l
	}
	if s.Estimate != nil {
		e := *s.Estimate
		out.Estimate = &e
	}
	if s.ConfirmedAmount != nil {
		v := *s.ConfirmedAmount
		out.ConfirmedAmount = &v
	}
	return &out
}

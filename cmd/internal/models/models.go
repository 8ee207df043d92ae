// Package models содержит доменные типы расчёта стоимости проектных услуг:
// профиль услуги, нормативы трудозатрат, скорректированные трудозатраты,
// ставки оплаты труда и итоговую смету договора.
package models

import (
	"strings"
)

// ServiceTypeProfile - контекст одного расчёта. Заполняется из формы и
// нормализуется политикой вида услуг перед использованием.
type ServiceTypeProfile struct {
	Category        ServiceCategory `json:"category"`
	Phase           DesignPhase     `json:"phase"`
	SiteCharacter   SiteCharacter   `json:"site_character"`
	Difficulty      Difficulty      `json:"difficulty"`
	Area            float64         `json:"area"`
	PriorPhaseReuse bool            `json:"prior_phase_reuse"`
	// EnvFactors - включённые поправочные факторы (только для ОВОС)
	EnvFactors []EnvFactor `json:"env_factors,omitempty"`
}

// HasEnvFactor сообщает, включён ли фактор f.
func (p ServiceTypeProfile) HasEnvFactor(f EnvFactor) bool {
	for _, x := range p.EnvFactors {
		if x == f {
			return true
		}
	}
	return false
}

// Table - «сырая» таблица источника после нормализации заголовков.
// Используется для отображения и выгрузки в книгу как есть.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Column возвращает индекс колонки по имени или -1.
func (t Table) Column(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// StaffingNormRow - строка базовой таблицы трудозатрат (чел.-дни по квалификациям).
type StaffingNormRow struct {
	// RowID - позиция строки в исходной таблице, ключ для периодов
	RowID     int    `json:"row_id"`
	TaskLabel string `json:"task_label"`
	Unit      string `json:"unit"`
	// AppliesArea - колонка «환산계수(α₁)»
	AppliesArea bool `json:"applies_area"`
	// AreaRule - код правила α₁ для ОВОС (1, 2, 3); 0 - правило вида услуг по умолчанию
	AreaRule int `json:"area_rule,omitempty"`
	// AppliesCorrection - колонка «보정계수(α₂, α₃)»
	AppliesCorrection bool              `json:"applies_correction"`
	Base              map[Grade]float64 `json:"base"`
}

// Billable - строка участвует в стоимости только при непустой единице измерения.
func (r StaffingNormRow) Billable() bool {
	return strings.TrimSpace(r.Unit) != ""
}

// IsLumpSum - единица «식» (комплект), период всегда 1.
func (r StaffingNormRow) IsLumpSum() bool {
	return strings.TrimSpace(r.Unit) == UnitLumpSum
}

// HierarchyCode возвращает первый токен метки («2.1.3 설계도서 작성» -> «2.1.3»).
func (r StaffingNormRow) HierarchyCode() string {
	fields := strings.Fields(r.TaskLabel)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// NormTable - таблица нормативов для одной стадии проектирования.
type NormTable struct {
	Phase DesignPhase       `json:"phase"`
	Rows  []StaffingNormRow `json:"rows"`
	Raw   Table             `json:"-"`
}

// AdjustedStaffingRow - строка норматива после применения коэффициентов.
// Для строк без единицы измерения Quantities и Traces пустые.
type AdjustedStaffingRow struct {
	StaffingNormRow
	Quantities map[Grade]float64 `json:"quantities"`
	Traces     map[Grade]string  `json:"traces"`
}

// WageTable - дневные ставки по квалификациям в разрезе вида работ.
type WageTable struct {
	Raw   Table                              `json:"raw"`
	Rates map[WorkCategory]map[Grade]float64 `json:"rates"`
}

// Rate возвращает ставку; ok=false, если квалификации нет в таблице.
func (w WageTable) Rate(category WorkCategory, grade Grade) (float64, bool) {
	byGrade, ok := w.Rates[category]
	if !ok {
		return 0, false
	}
	rate, ok := byGrade[grade]
	return rate, ok
}

// InsuranceTable - ставки страхового взноса по видам работ (в процентах).
type InsuranceTable struct {
	Raw   Table              `json:"raw"`
	Rates map[string]float64 `json:"rates"`
}

// Rate возвращает ставку для вида работ.
func (t InsuranceTable) Rate(workType string) (float64, bool) {
	v, ok := t.Rates[strings.TrimSpace(workType)]
	return v, ok
}

// LaborRow - строка разбивки прямых затрат на оплату труда.
type LaborRow struct {
	RowID      int               `json:"row_id"`
	TaskLabel  string            `json:"task_label"`
	Total      float64           `json:"total"`
	Quantities map[Grade]float64 `json:"quantities,omitempty"`
	Period     int               `json:"period"`
	IsSummary  bool              `json:"is_summary,omitempty"`
}

// LaborBreakdown - результат агрегации: первая строка - итог «총계».
type LaborBreakdown struct {
	Rows             []LaborRow `json:"rows"`
	TotalDirectLabor float64    `json:"total_direct_labor"`
}

// CostCascadeInputs - ставки каскада накруток (в процентах, кроме DirectExpenseAmount).
type CostCascadeInputs struct {
	OverheadRatePercent     float64 `json:"overhead_rate_percent"`
	DirectExpenseAmount     float64 `json:"direct_expense_amount"`
	TechnicalFeeRatePercent float64 `json:"technical_fee_rate_percent"`
	InsuranceRatePercent    float64 `json:"insurance_rate_percent"`
	VATRatePercent          float64 `json:"vat_rate_percent"`
}

// DefaultCostCascadeInputs - значения по умолчанию из формы.
// Типичные диапазоны: накладные 110–120 %, технический сбор 20–40 %.
func DefaultCostCascadeInputs() CostCascadeInputs {
	return CostCascadeInputs{
		OverheadRatePercent:     110,
		DirectExpenseAmount:     5_000_000,
		TechnicalFeeRatePercent: 20,
		InsuranceRatePercent:    0.432,
		VATRatePercent:          10,
	}
}

// LineItem - строка сметы («내역서»). Пустые ячейки - nil.
type LineItem struct {
	Label         string   `json:"label"`
	Basis         string   `json:"basis"`
	Quantity      string   `json:"quantity"`
	Unit          string   `json:"unit"`
	TotalAmount   *float64 `json:"total_amount"`
	LaborAmount   *float64 `json:"labor_amount"`
	ExpenseAmount *float64 `json:"expense_amount"`
	Note          string   `json:"note"`
}

// ContractEstimate - итог каскада.
type ContractEstimate struct {
	Inputs                       CostCascadeInputs `json:"inputs"`
	TechFeeIncludesDirectExpense bool              `json:"tech_fee_includes_direct_expense"`
	DirectLabor                  float64           `json:"direct_labor"`
	Overhead                     float64           `json:"overhead"`
	DirectExpense                float64           `json:"direct_expense"`
	TechnicalFee                 float64           `json:"technical_fee"`
	InsurancePremium             float64           `json:"insurance_premium"`
	VAT                          float64           `json:"vat"`
	ContractAmount               float64           `json:"contract_amount"`
	LineItems                    []LineItem        `json:"line_items"`
}

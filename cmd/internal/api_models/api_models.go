package api_models

// ProfileRequest - параметры вида услуг из формы «기초입력».
// Пустой category определяется по стадии проектирования.
type ProfileRequest struct {
	Category        string   `json:"category"`
	Phase           string   `json:"phase" binding:"required"`
	SiteCharacter   string   `json:"site_character"`
	Difficulty      string   `json:"difficulty"`
	Area            float64  `json:"area"`
	PriorPhaseReuse bool     `json:"prior_phase_reuse"`
	EnvFactors      []string `json:"env_factors,omitempty"`
}

// CascadeRequest - ставки каскада. Незаданное поле берётся из значений по умолчанию.
type CascadeRequest struct {
	OverheadRatePercent     *float64 `json:"overhead_rate_percent"`
	DirectExpenseAmount     *float64 `json:"direct_expense_amount"`
	TechnicalFeeRatePercent *float64 `json:"technical_fee_rate_percent"`
	InsuranceRatePercent    *float64 `json:"insurance_rate_percent"`
	VATRatePercent          *float64 `json:"vat_rate_percent"`
}

// InputsRequest - тело PUT /sessions/:id/inputs.
type InputsRequest struct {
	ProjectName string          `json:"project_name"`
	Agency      string          `json:"agency"`
	Profile     ProfileRequest  `json:"profile" binding:"required"`
	Cascade     *CascadeRequest `json:"cascade,omitempty"`
}

// LaborRequest - периоды по RowID строк норматива.
type LaborRequest struct {
	Periods map[int]int `json:"periods"`
}

// EstimateRequest - тело POST /sessions/:id/estimate.
// Confirm фиксирует сумму договора для выгрузки («산출 완료»).
type EstimateRequest struct {
	Cascade *CascadeRequest `json:"cascade,omitempty"`
	Confirm bool            `json:"confirm"`
}

// StatelessEstimateRequest - тело POST /api/v1/estimates.
type StatelessEstimateRequest struct {
	ProjectName string          `json:"project_name"`
	Agency      string          `json:"agency"`
	Profile     ProfileRequest  `json:"profile" binding:"required"`
	Periods     map[int]int     `json:"periods,omitempty"`
	Cascade     *CascadeRequest `json:"cascade,omitempty"`
}

// PeriodRow - период строки с подписью для формы ввода.
type PeriodRow struct {
	RowID     int    `json:"row_id"`
	TaskLabel string `json:"task_label"`
	Unit      string `json:"unit"`
	Period    int    `json:"period"`
	// Fixed - период комплекта всегда 1 и не редактируется
	Fixed bool `json:"fixed"`
}

// CoverResponse - сводка титульного листа.
type CoverResponse struct {
	ProjectName     string  `json:"project_name"`
	Agency          string  `json:"agency"`
	IssueDate       string  `json:"issue_date"`
	ContractAmount  float64 `json:"contract_amount"`
	ServiceCost     float64 `json:"service_cost"`
	ServiceCostText string  `json:"service_cost_text"`
	Confirmed       bool    `json:"confirmed"`
}

// SiteOption - характер участка и допустимые для него сложности.
type SiteOption struct {
	Name         string   `json:"name"`
	Difficulties []string `json:"difficulties"`
}

// CategoryOption - вид услуг для выпадающих списков формы.
type CategoryOption struct {
	Name                         string       `json:"name"`
	Phases                       []string     `json:"phases"`
	Sites                        []SiteOption `json:"sites"`
	EnvFactors                   []string     `json:"env_factors,omitempty"`
	TechFeeIncludesDirectExpense bool         `json:"tech_fee_includes_direct_expense"`
}

// Package cascade считает каскад накруток на прямые затраты на оплату труда:
// накладные расходы, прямые расходы, технический сбор, страховой взнос и НДС.
package cascade

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/apierrors"
	"github.com/zhukovvlad/designfee-go/cmd/internal/util"
	"github.com/zhukovvlad/designfee-go/cmd/pkg/logging"
)

// Метки строк сметы в порядке вывода.
const (
	LabelDirectLabor   = "직접인건비"
	LabelOverhead      = "제경비"
	LabelDirectExpense = "직접경비"
	LabelTechnicalFee  = "기술료"
	LabelInsurance     = "손해공제비"
	LabelVAT           = "부가가치세"
	LabelContract      = "도급예정액"
)

// Calculator применяет каскад строго по порядку: каждая ступень считается
// от накопленной суммы всех предыдущих.
type Calculator struct {
	logger *logging.Logger
}

// NewCalculator создает новый экземпляр Calculator
func NewCalculator(logger *logging.Logger) *Calculator {
	return &Calculator{logger: logger}
}

// Compute возвращает смету договора. includeExpense определяет, входят ли прямые
// расходы в базу технического сбора.
func (c *Calculator) Compute(
	directLabor float64,
	inputs models.CostCascadeInputs,
	includeExpense bool,
) (models.ContractEstimate, error) {
	logger := c.logger.WithFields(logrus.Fields{
		"method":          "Compute",
		"include_expense": includeExpense,
	})

	// Нулевые прямые затраты - допустимый итог (например, все квалификации без ставки).
	if directLabor < 0 {
		return models.ContractEstimate{}, apierrors.NewValidationError("прямые затраты на оплату труда не могут быть отрицательными: %.2f", directLabor)
	}
	if err := validateInputs(inputs); err != nil {
		return models.ContractEstimate{}, err
	}

	labor := decimal.NewFromFloat(directLabor)
	expense := decimal.NewFromFloat(inputs.DirectExpenseAmount)

	overhead := util.Percent(labor, inputs.OverheadRatePercent)

	techBase := labor.Add(overhead)
	if includeExpense {
		techBase = techBase.Add(expense)
	}
	techFee := util.Percent(techBase, inputs.TechnicalFeeRatePercent)

	running := labor.Add(overhead).Add(expense).Add(techFee)
	insurance := util.Percent(running, inputs.InsuranceRatePercent)

	running = running.Add(insurance)
	vat := util.Percent(running, inputs.VATRatePercent)

	contract := running.Add(vat)

	est := models.ContractEstimate{
		Inputs:                       inputs,
		TechFeeIncludesDirectExpense: includeExpense,
		DirectLabor:                  labor.Round(2).InexactFloat64(),
		Overhead:                     overhead.Round(2).InexactFloat64(),
		DirectExpense:                expense.Round(2).InexactFloat64(),
		TechnicalFee:                 techFee.Round(2).InexactFloat64(),
		InsurancePremium:             insurance.Round(2).InexactFloat64(),
		VAT:                          vat.Round(2).InexactFloat64(),
		ContractAmount:               contract.Round(2).InexactFloat64(),
	}
	est.LineItems = lineItems(est)

	logger.Infof("Каскад рассчитан: прямые затраты %.2f, сумма договора %.2f", est.DirectLabor, est.ContractAmount)
	return est, nil
}

// ServiceCost - «용역비» для отображения: сумма договора, усечённая до тысяч.
// Результат не должен использоваться в дальнейших расчётах.
func ServiceCost(contractAmount float64) float64 {
	return util.TruncateToThousand(contractAmount)
}

func validateInputs(in models.CostCascadeInputs) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"ставка накладных расходов", in.OverheadRatePercent},
		{"прямые расходы", in.DirectExpenseAmount},
		{"ставка технического сбора", in.TechnicalFeeRatePercent},
		{"ставка страхового взноса", in.InsuranceRatePercent},
		{"ставка НДС", in.VATRatePercent},
	}
	for _, f := range fields {
		if f.value < 0 {
			return apierrors.NewValidationError("%s не может быть отрицательной: %v", f.name, f.value)
		}
	}
	return nil
}

func lineItems(e models.ContractEstimate) []models.LineItem {
	techBasis := "인건비+제경비×율"
	if e.TechFeeIncludesDirectExpense {
		techBasis = "인건비+제경비+직접경비×율"
	}
	percent := func(v float64) string { return util.FormatPlain(v) + "%" }

	return []models.LineItem{
		{Label: LabelDirectLabor, Basis: "-", Quantity: "-",
			TotalAmount: util.Float64Ptr(e.DirectLabor), LaborAmount: util.Float64Ptr(e.DirectLabor)},
		{Label: LabelOverhead, Basis: "직접인건비×율", Quantity: "-",
			ExpenseAmount: util.Float64Ptr(e.Overhead), Note: percent(e.Inputs.OverheadRatePercent)},
		{Label: LabelDirectExpense, Basis: "제출도서 인쇄", Quantity: "1", Unit: models.UnitLumpSum,
			ExpenseAmount: util.Float64Ptr(e.DirectExpense)},
		{Label: LabelTechnicalFee, Basis: techBasis, Quantity: "-",
			ExpenseAmount: util.Float64Ptr(e.TechnicalFee), Note: percent(e.Inputs.TechnicalFeeRatePercent)},
		{Label: LabelInsurance, Basis: "용역비×율", Quantity: "-",
			ExpenseAmount: util.Float64Ptr(e.InsurancePremium), Note: util.FormatPlain(e.Inputs.InsuranceRatePercent)},
		{Label: LabelVAT, Basis: "합계×율", Quantity: "-",
			ExpenseAmount: util.Float64Ptr(e.VAT), Note: percent(e.Inputs.VATRatePercent)},
		{Label: LabelContract, Quantity: "-",
			TotalAmount: util.Float64Ptr(e.ContractAmount)},
	}
}

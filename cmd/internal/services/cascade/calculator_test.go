package cascade

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/apierrors"
	"github.com/zhukovvlad/designfee-go/cmd/pkg/logging"
)

const testDirectLabor = 10_000_000.0

func TestCalculator_Compute(t *testing.T) {
	calc := NewCalculator(logging.NewDiscardLogger())
	inputs := models.DefaultCostCascadeInputs()

	t.Run("технический сбор с прямыми расходами в базе", func(t *testing.T) {
		est, err := calc.Compute(testDirectLabor, inputs, true)
		require.NoError(t, err)

		assert.Equal(t, 11_000_000.0, est.Overhead)
		assert.Equal(t, 5_000_000.0, est.DirectExpense)
		assert.Equal(t, 5_200_000.0, est.TechnicalFee)
		assert.Equal(t, 134_784.0, est.InsurancePremium)
		assert.Equal(t, 3_133_478.4, est.VAT)
		assert.Equal(t, 34_468_262.4, est.ContractAmount)
		assert.True(t, est.TechFeeIncludesDirectExpense)
	})

	t.Run("технический сбор без прямых расходов в базе", func(t *testing.T) {
		est, err := calc.Compute(testDirectLabor, inputs, false)
		require.NoError(t, err)

		assert.Equal(t, 11_000_000.0, est.Overhead)
		assert.Equal(t, 4_200_000.0, est.TechnicalFee)
		assert.Equal(t, 130_464.0, est.InsurancePremium)
		assert.Equal(t, 3_033_046.4, est.VAT)
		assert.Equal(t, 33_363_510.4, est.ContractAmount)
		assert.False(t, est.TechFeeIncludesDirectExpense)
	})

	t.Run("совпадает с формулой в замкнутом виде", func(t *testing.T) {
		in := models.CostCascadeInputs{
			OverheadRatePercent:     117.5,
			DirectExpenseAmount:     3_250_000,
			TechnicalFeeRatePercent: 33.3,
			InsuranceRatePercent:    0.321,
			VATRatePercent:          10,
		}
		dl := 27_345_678.91

		for _, include := range []bool{true, false} {
			est, err := calc.Compute(dl, in, include)
			require.NoError(t, err)

			oh := dl * in.OverheadRatePercent / 100
			base := dl + oh
			if include {
				base += in.DirectExpenseAmount
			}
			tf := base * in.TechnicalFeeRatePercent / 100
			ins := (dl + oh + in.DirectExpenseAmount + tf) * in.InsuranceRatePercent / 100
			vat := (dl + oh + in.DirectExpenseAmount + tf + ins) * in.VATRatePercent / 100
			want := dl + oh + in.DirectExpenseAmount + tf + ins + vat

			assert.InDelta(t, want, est.ContractAmount, 0.01, "include=%t", include)
			assert.InDelta(t, est.DirectLabor+est.Overhead+est.DirectExpense+est.TechnicalFee+est.InsurancePremium+est.VAT,
				est.ContractAmount, 0.05)
		}
	})

	t.Run("строки сметы", func(t *testing.T) {
		est, err := calc.Compute(testDirectLabor, inputs, true)
		require.NoError(t, err)

		require.Len(t, est.LineItems, 7)
		labels := make([]string, len(est.LineItems))
		for i, li := range est.LineItems {
			labels[i] = li.Label
		}
		assert.Equal(t, []string{
			LabelDirectLabor, LabelOverhead, LabelDirectExpense, LabelTechnicalFee,
			LabelInsurance, LabelVAT, LabelContract,
		}, labels)

		assert.Equal(t, testDirectLabor, *est.LineItems[0].LaborAmount)
		assert.Nil(t, est.LineItems[0].ExpenseAmount)
		assert.Equal(t, "110%", est.LineItems[1].Note)
		assert.Equal(t, models.UnitLumpSum, est.LineItems[2].Unit)
		assert.Equal(t, "인건비+제경비+직접경비×율", est.LineItems[3].Basis)
		assert.Equal(t, "0.432", est.LineItems[4].Note)
		assert.Equal(t, 34_468_262.4, *est.LineItems[6].TotalAmount)
	})
}

func TestCalculator_ComputeErrors(t *testing.T) {
	calc := NewCalculator(logging.NewDiscardLogger())

	t.Run("отрицательные прямые затраты", func(t *testing.T) {
		_, err := calc.Compute(-1, models.DefaultCostCascadeInputs(), true)
		var vErr *apierrors.ValidationError
		assert.True(t, errors.As(err, &vErr))
	})

	t.Run("отрицательная ставка", func(t *testing.T) {
		in := models.DefaultCostCascadeInputs()
		in.VATRatePercent = -1

		_, err := calc.Compute(testDirectLabor, in, true)
		var vErr *apierrors.ValidationError
		assert.True(t, errors.As(err, &vErr))
	})
}

func TestCalculator_ComputeZeroLabor(t *testing.T) {
	calc := NewCalculator(logging.NewDiscardLogger())

	// GIVEN: трудозатраты рассчитаны, но дали 0 (ни одной ставки в таблице)
	// WHEN: считаем каскад со значениями по умолчанию
	est, err := calc.Compute(0, models.DefaultCostCascadeInputs(), true)

	// THEN: смета строится от прямых расходов 5 000 000
	require.NoError(t, err)
	assert.Equal(t, 0.0, est.DirectLabor)
	assert.Equal(t, 0.0, est.Overhead)
	assert.Equal(t, 5_000_000.0, est.DirectExpense)
	assert.Equal(t, 1_000_000.0, est.TechnicalFee)
	assert.Equal(t, 25_920.0, est.InsurancePremium)
	assert.Equal(t, 602_592.0, est.VAT)
	assert.Equal(t, 6_628_512.0, est.ContractAmount)
	assert.Equal(t, 6_628_000.0, ServiceCost(est.ContractAmount))
}

func TestServiceCost(t *testing.T) {
	assert.Equal(t, 123_456_000.0, ServiceCost(123_456_789))
	assert.Equal(t, 34_468_000.0, ServiceCost(34_468_262.4))
	assert.Equal(t, ServiceCost(123_456_789), ServiceCost(ServiceCost(123_456_789)))
}

package labor

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/apierrors"
	"github.com/zhukovvlad/designfee-go/cmd/internal/testutil"
	"github.com/zhukovvlad/designfee-go/cmd/pkg/logging"
)

var testPeriods = PeriodPolicy{DefaultDuration: 2, MinPeriod: 1}

// baselineRows - трудозатраты без поправок (α₁ = α₂ = α₃ = 1).
func baselineRows() []models.AdjustedStaffingRow {
	norms := testutil.LandscapeNorms()
	out := make([]models.AdjustedStaffingRow, 0, len(norms.Rows))
	for _, r := range norms.Rows {
		adj := models.AdjustedStaffingRow{
			StaffingNormRow: r,
			Quantities:      map[models.Grade]float64{},
			Traces:          map[models.Grade]string{},
		}
		if r.Billable() {
			for g, v := range r.Base {
				adj.Quantities[g] = v
			}
		}
		out = append(out, adj)
	}
	return out
}

func laborRow(t *testing.T, b models.LaborBreakdown, id int) models.LaborRow {
	t.Helper()
	for _, r := range b.Rows {
		if r.RowID == id && !r.IsSummary {
			return r
		}
	}
	t.Fatalf("строка %d отсутствует в разбивке", id)
	return models.LaborRow{}
}

func TestPeriodPolicy_DefaultPeriod(t *testing.T) {
	tests := []struct {
		name  string
		label string
		unit  string
		want  int
	}{
		{"комплект", "3. 보고서 인쇄", "식", 1},
		{"заседание комиссии", "2.2 위원회 심의", "회", 1},
		{"согласование с ведомствами", "2.2 관계기관 협의", "회", 1},
		{"публичные слушания", "2.3 주민설명회", "회", 2},
		{"обычная задача", "1.1 현황조사", "일", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := models.StaffingNormRow{TaskLabel: tt.label, Unit: tt.unit}
			assert.Equal(t, tt.want, testPeriods.DefaultPeriod(row))
		})
	}

	t.Run("длительность по умолчанию настраивается", func(t *testing.T) {
		p := PeriodPolicy{DefaultDuration: 5}
		assert.Equal(t, 5, p.DefaultPeriod(models.StaffingNormRow{TaskLabel: "1.1 현황조사", Unit: "일"}))
	})

	t.Run("только тарифицируемые строки", func(t *testing.T) {
		periods := testPeriods.DefaultPeriods(baselineRows())
		assert.Len(t, periods, 7)
		assert.NotContains(t, periods, 0)
		assert.NotContains(t, periods, 8)
		assert.Equal(t, 2, periods[6])
	})
}

func TestAggregator_Aggregate(t *testing.T) {
	logger, hook := test.NewNullLogger()
	aggregator := NewAggregator(testPeriods, logging.Wrap(logger))

	t.Run("итог по умолчанию", func(t *testing.T) {
		hook.Reset()

		b, err := aggregator.Aggregate(baselineRows(), nil, testutil.LandscapeWages(), models.WorkConstruction)
		require.NoError(t, err)

		// THEN: первая строка - итог, затем 7 тарифицируемых строк
		require.Len(t, b.Rows, 8)
		assert.True(t, b.Rows[0].IsSummary)
		assert.Equal(t, SummaryLabel, b.Rows[0].TaskLabel)
		assert.Equal(t, 17_305_184.5, b.TotalDirectLabor)
		assert.Equal(t, b.TotalDirectLabor, b.Rows[0].Total)

		assert.Equal(t, 4_210_826.0, laborRow(t, b, 1).Total)
		assert.Equal(t, 752_706.5, laborRow(t, b, 5).Total)
		assert.Equal(t, 1_520_000.0, laborRow(t, b, 6).Total)
	})

	t.Run("квалификация без ставки не обнуляет остальные", func(t *testing.T) {
		hook.Reset()

		b, err := aggregator.Aggregate(baselineRows(), nil, testutil.LandscapeWages(), models.WorkConstruction)
		require.NoError(t, err)

		// 초급기술자 без ставки: 385 413 + 2×310 000 + 2×250 000 + 3×200 000 = 2 105 413 в день
		assert.Equal(t, 2_105_413.0*2, laborRow(t, b, 1).Total)

		var warnings []string
		for _, e := range hook.AllEntries() {
			if e.Level == logrus.WarnLevel {
				warnings = append(warnings, e.Message)
			}
		}
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], string(models.GradeJunior))
	})

	t.Run("введённые периоды заменяют значения по умолчанию", func(t *testing.T) {
		b, err := aggregator.Aggregate(baselineRows(), map[int]int{1: 5, 7: 3}, testutil.LandscapeWages(), models.WorkConstruction)
		require.NoError(t, err)

		assert.Equal(t, 5, laborRow(t, b, 1).Period)
		assert.Equal(t, 2_105_413.0*5, laborRow(t, b, 1).Total)

		// «식» всегда 1
		assert.Equal(t, 1, laborRow(t, b, 7).Period)
		assert.Equal(t, 200_000.0, laborRow(t, b, 7).Total)
	})

	t.Run("строки без единицы не участвуют", func(t *testing.T) {
		rows := baselineRows()
		rows[0].Quantities = map[models.Grade]float64{models.GradePrincipalEngineer: 100}
		rows[8].Quantities = map[models.Grade]float64{models.GradePrincipalEngineer: 100}

		b, err := aggregator.Aggregate(rows, nil, testutil.LandscapeWages(), models.WorkConstruction)
		require.NoError(t, err)
		assert.Equal(t, 17_305_184.5, b.TotalDirectLabor)
		for _, r := range b.Rows {
			assert.NotEqual(t, 0, r.RowID)
			assert.NotEqual(t, 8, r.RowID)
		}
	})

	t.Run("итог равен сумме строк", func(t *testing.T) {
		b, err := aggregator.Aggregate(baselineRows(), map[int]int{2: 3, 3: 4}, testutil.LandscapeWages(), models.WorkConstruction)
		require.NoError(t, err)

		sum := 0.0
		for _, r := range b.Rows[1:] {
			sum += r.Total
		}
		assert.InDelta(t, sum, b.TotalDirectLabor, 0.005)
	})
}

func TestAggregator_AggregateErrors(t *testing.T) {
	aggregator := NewAggregator(testPeriods, logging.NewDiscardLogger())

	t.Run("период ниже минимума", func(t *testing.T) {
		_, err := aggregator.Aggregate(baselineRows(), map[int]int{1: 0}, testutil.LandscapeWages(), models.WorkConstruction)
		var vErr *apierrors.ValidationError
		assert.True(t, errors.As(err, &vErr))
	})

	t.Run("нулевой период допустим при MinPeriod = 0", func(t *testing.T) {
		lenient := NewAggregator(PeriodPolicy{DefaultDuration: 2, MinPeriod: 0}, logging.NewDiscardLogger())
		b, err := lenient.Aggregate(baselineRows(), map[int]int{1: 0}, testutil.LandscapeWages(), models.WorkConstruction)
		require.NoError(t, err)
		assert.Equal(t, 0.0, laborRow(t, b, 1).Total)
	})

	t.Run("нет трудозатрат", func(t *testing.T) {
		_, err := aggregator.Aggregate(nil, nil, testutil.LandscapeWages(), models.WorkConstruction)
		var pErr *apierrors.PrerequisiteMissingError
		assert.True(t, errors.As(err, &pErr))
	})

	t.Run("нет ставок для вида работ", func(t *testing.T) {
		_, err := aggregator.Aggregate(baselineRows(), nil, models.WageTable{}, models.WorkConstruction)
		var pErr *apierrors.PrerequisiteMissingError
		assert.True(t, errors.As(err, &pErr))
	})
}

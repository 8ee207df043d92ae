package export

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/apierrors"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/cascade"
	"github.com/zhukovvlad/designfee-go/cmd/internal/testutil"
	"github.com/zhukovvlad/designfee-go/cmd/pkg/logging"
)

func testDocument(t *testing.T) Document {
	t.Helper()

	est, err := cascade.NewCalculator(logging.NewDiscardLogger()).
		Compute(10_000_000, models.DefaultCostCascadeInputs(), true)
	require.NoError(t, err)

	norms := testutil.LandscapeNorms()
	staffing := make([]models.AdjustedStaffingRow, 0, 3)
	for _, r := range norms.Rows[:3] {
		row := models.AdjustedStaffingRow{StaffingNormRow: r, Quantities: map[models.Grade]float64{}, Traces: map[models.Grade]string{}}
		if r.Billable() {
			for g, v := range r.Base {
				row.Quantities[g] = v
				row.Traces[g] = fmt.Sprintf("%v × 1.000", v)
			}
		}
		staffing = append(staffing, row)
	}

	return Document{
		Metadata: Metadata{
			ProjectName: "OO근린공원 조성",
			Agency:      "=OO시청",
			IssueDate:   time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		Estimate: est,
		Labor: models.LaborBreakdown{
			TotalDirectLabor: 10_000_000,
			Rows: []models.LaborRow{
				{RowID: -1, TaskLabel: "총계", Total: 10_000_000, IsSummary: true},
				{RowID: 1, TaskLabel: "1.1 현황조사", Total: 10_000_000, Period: 2,
					Quantities: map[models.Grade]float64{models.GradePrincipalEngineer: 1.5}},
			},
		},
		Staffing: staffing,
		Wages:    testutil.LandscapeWages(),
		Insurance: models.InsuranceTable{Raw: models.Table{
			Headers: []string{"공종", "요율(%)"},
			Rows:    [][]string{{"관람집회공사", "0.432"}},
		}},
	}
}

func cell(t *testing.T, f *excelize.File, sheet, axis string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, axis)
	require.NoError(t, err)
	return v
}

func TestAssembler_Assemble(t *testing.T) {
	path := testutil.WriteTemplate(t, map[string]int{SheetBasis: 12}, RequiredSheets...)
	assembler := NewAssembler(path, logging.NewDiscardLogger())

	doc := testDocument(t)
	doc.Wages.Raw = models.Table{
		Headers: []string{"직종명", "건설"},
		Rows:    [][]string{{"기술사", "385413"}},
	}

	data, err := assembler.Assemble(doc)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	t.Run("титульный лист", func(t *testing.T) {
		assert.Equal(t, "2025-03-14", cell(t, f, SheetCover, CellIssueDate))
		assert.Equal(t, "OO근린공원 조성", cell(t, f, SheetCover, CellProject))
		assert.Equal(t, "34,468,000 원", cell(t, f, SheetCover, CellServiceCost))
		assert.Equal(t, "'=OO시청", cell(t, f, SheetCover, CellAgency), "формула экранирована")
	})

	t.Run("смета", func(t *testing.T) {
		assert.Equal(t, "공종", cell(t, f, SheetBreakdown, "A1"))
		assert.Equal(t, "비고", cell(t, f, SheetBreakdown, "H1"))
		assert.Equal(t, cascade.LabelDirectLabor, cell(t, f, SheetBreakdown, "A2"))
		assert.Equal(t, "10000000", cell(t, f, SheetBreakdown, "F2"))
		assert.Equal(t, "", cell(t, f, SheetBreakdown, "G2"))
		assert.Equal(t, cascade.LabelContract, cell(t, f, SheetBreakdown, "A8"))
		assert.Equal(t, "34468262.4", cell(t, f, SheetBreakdown, "E8"))
	})

	t.Run("лист персонала: итог первой строкой и жирные заголовки", func(t *testing.T) {
		assert.Equal(t, "업무구분", cell(t, f, SheetStaffing, "A1"))
		assert.Equal(t, "기간", cell(t, f, SheetStaffing, "H1"))
		assert.Equal(t, "총계", cell(t, f, SheetStaffing, "A2"))
		assert.Equal(t, "", cell(t, f, SheetStaffing, "H2"))
		assert.Equal(t, "1.5", cell(t, f, SheetStaffing, "C3"))
		assert.Equal(t, "2", cell(t, f, SheetStaffing, "H3"))

		styleID, err := f.GetCellStyle(SheetStaffing, "A1")
		require.NoError(t, err)
		style, err := f.GetStyle(styleID)
		require.NoError(t, err)
		require.NotNil(t, style.Font)
		assert.True(t, style.Font.Bold)
	})

	t.Run("основание расчёта перезаписывается целиком", func(t *testing.T) {
		assert.Equal(t, "업무구분", cell(t, f, SheetBasis, "A1"))
		assert.Equal(t, "1. 기본조사", cell(t, f, SheetBasis, "A2"))
		assert.Equal(t, "", cell(t, f, SheetBasis, "E2"), "заголовок раздела без трудозатрат")
		assert.Equal(t, "1", cell(t, f, SheetBasis, "E3"))
		assert.Equal(t, "1 × 1.000", cell(t, f, SheetBasis, "J3"))
		assert.Equal(t, "", cell(t, f, SheetBasis, "A5"), "строки прошлой выгрузки удалены")
		assert.Equal(t, "", cell(t, f, SheetBasis, "A12"))
	})

	t.Run("таблицы ставок", func(t *testing.T) {
		assert.Equal(t, "직종명", cell(t, f, SheetWages, "A1"))
		assert.Equal(t, "385413", cell(t, f, SheetWages, "B2"))
		assert.Equal(t, "관람집회공사", cell(t, f, SheetInsurance, "A2"))
	})
}

func TestAssembler_TemplateErrors(t *testing.T) {
	t.Run("нет файла шаблона", func(t *testing.T) {
		assembler := NewAssembler(filepath.Join(t.TempDir(), "missing.xlsx"), logging.NewDiscardLogger())

		data, err := assembler.Assemble(testDocument(t))
		assert.Nil(t, data)
		var tErr *apierrors.TemplateNotFoundError
		assert.True(t, errors.As(err, &tErr))
	})

	t.Run("нет обязательного листа", func(t *testing.T) {
		path := testutil.WriteTemplate(t, nil, SheetCover, SheetBreakdown)
		assembler := NewAssembler(path, logging.NewDiscardLogger())

		data, err := assembler.Assemble(testDocument(t))
		assert.Nil(t, data)
		var tErr *apierrors.TemplateNotFoundError
		require.True(t, errors.As(err, &tErr))
		assert.Contains(t, tErr.Detail, SheetStaffing)
	})
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "OO근린공원_갑지.xlsx", FileName(" OO근린공원 "))
	assert.Equal(t, "A_B_갑지.xlsx", FileName("A/B"))
}

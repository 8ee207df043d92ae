// Package export заполняет шаблон книги Excel результатами расчёта.
// Раскладка листов и ячеек фиксирована шаблоном.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/apierrors"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/cascade"
	"github.com/zhukovvlad/designfee-go/cmd/internal/util"
	"github.com/zhukovvlad/designfee-go/cmd/pkg/logging"
)

// Листы шаблона.
const (
	SheetCover     = "갑지"
	SheetBreakdown = "내역서"
	SheetStaffing  = "투입인원 및 내역"
	SheetBasis     = "투입인원수 산정기준"
	SheetWages     = "노임단가"
	SheetInsurance = "손해보험요율"
)

// Ячейки листа «갑지».
const (
	CellProject     = "F10"
	CellAgency      = "G22"
	CellServiceCost = "G20"
	CellIssueDate   = "A1"
)

const dateLayout = "2006-01-02"

// RequiredSheets - листы, без которых выгрузка не выполняется.
var RequiredSheets = []string{SheetCover, SheetBreakdown, SheetStaffing, SheetBasis, SheetWages, SheetInsurance}

var breakdownHeaders = []string{"공종", "규격", "수량", "단위", "총액", "노무비", "경비", "비고"}

// Metadata - реквизиты титульного листа.
type Metadata struct {
	ProjectName string
	Agency      string
	IssueDate   time.Time
}

// Document - всё, что попадает в книгу.
type Document struct {
	Metadata  Metadata
	Estimate  models.ContractEstimate
	Labor     models.LaborBreakdown
	Staffing  []models.AdjustedStaffingRow
	Wages     models.WageTable
	Insurance models.InsuranceTable
}

// Assembler открывает шаблон заново для каждой выгрузки; сам шаблон не изменяется.
type Assembler struct {
	templatePath string
	logger       *logging.Logger
}

// NewAssembler создает новый экземпляр Assembler
func NewAssembler(templatePath string, logger *logging.Logger) *Assembler {
	return &Assembler{templatePath: templatePath, logger: logger}
}

// FileName - имя файла выгрузки: «<проект>_갑지.xlsx».
func FileName(projectName string) string {
	name := strings.TrimSpace(projectName)
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, name)
	return name + "_" + SheetCover + ".xlsx"
}

// Assemble возвращает содержимое заполненной книги. Если шаблона или
// какого-либо листа нет, возвращается TemplateNotFoundError и ничего не пишется.
func (a *Assembler) Assemble(doc Document) ([]byte, error) {
	logger := a.logger.WithField("method", "Assemble")

	f, err := a.openTemplate()
	if err != nil {
		logger.Errorf("Шаблон недоступен: %v", err)
		return nil, err
	}
	defer f.Close()

	steps := []struct {
		name string
		fn   func(*excelize.File, Document) error
	}{
		{SheetCover, writeCover},
		{SheetBreakdown, writeBreakdown},
		{SheetStaffing, writeStaffing},
		{SheetBasis, writeBasis},
		{SheetWages, func(f *excelize.File, d Document) error { return writeRawTable(f, SheetWages, d.Wages.Raw) }},
		{SheetInsurance, func(f *excelize.File, d Document) error { return writeRawTable(f, SheetInsurance, d.Insurance.Raw) }},
	}
	for _, s := range steps {
		if err := s.fn(f, doc); err != nil {
			return nil, fmt.Errorf("лист %s: %w", s.name, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("запись книги: %w", err)
	}

	logger.Infof("Книга сформирована: %d байт", buf.Len())
	return buf.Bytes(), nil
}

func (a *Assembler) openTemplate() (*excelize.File, error) {
	if _, err := os.Stat(a.templatePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apierrors.NewTemplateNotFoundError(a.templatePath, "")
		}
		return nil, apierrors.NewTemplateNotFoundError(a.templatePath, err.Error())
	}

	f, err := excelize.OpenFile(a.templatePath)
	if err != nil {
		return nil, apierrors.NewTemplateNotFoundError(a.templatePath, err.Error())
	}

	for _, sheet := range RequiredSheets {
		idx, err := f.GetSheetIndex(sheet)
		if err != nil || idx < 0 {
			f.Close()
			return nil, apierrors.NewTemplateNotFoundError(a.templatePath, fmt.Sprintf("нет листа %q", sheet))
		}
	}
	return f, nil
}

func writeCover(f *excelize.File, doc Document) error {
	date := doc.Metadata.IssueDate
	if date.IsZero() {
		date = time.Now()
	}
	cells := []struct {
		cell  string
		value any
	}{
		{CellIssueDate, date.Format(dateLayout)},
		{CellProject, sanitizeExcelCell(doc.Metadata.ProjectName)},
		{CellServiceCost, util.FormatWon(cascade.ServiceCost(doc.Estimate.ContractAmount))},
		{CellAgency, sanitizeExcelCell(doc.Metadata.Agency)},
	}
	for _, c := range cells {
		if err := f.SetCellValue(SheetCover, c.cell, c.value); err != nil {
			return err
		}
	}
	return nil
}

func writeBreakdown(f *excelize.File, doc Document) error {
	if err := writeRow(f, SheetBreakdown, 1, toAny(breakdownHeaders)); err != nil {
		return err
	}
	for i, li := range doc.Estimate.LineItems {
		values := []any{
			li.Label, li.Basis, li.Quantity, li.Unit,
			amount(li.TotalAmount), amount(li.LaborAmount), amount(li.ExpenseAmount), li.Note,
		}
		if err := writeRow(f, SheetBreakdown, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeStaffing(f *excelize.File, doc Document) error {
	headers := []string{"업무구분", "계"}
	for _, g := range models.Grades {
		headers = append(headers, string(g))
	}
	headers = append(headers, "기간")

	if err := writeRow(f, SheetStaffing, 1, toAny(headers)); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("стиль заголовка: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(SheetStaffing, "A1", last, style); err != nil {
		return err
	}

	for i, row := range doc.Labor.Rows {
		values := []any{row.TaskLabel, row.Total}
		for _, g := range models.Grades {
			if row.IsSummary {
				values = append(values, "")
				continue
			}
			values = append(values, row.Quantities[g])
		}
		if row.IsSummary {
			values = append(values, "")
		} else {
			values = append(values, row.Period)
		}
		if err := writeRow(f, SheetStaffing, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeBasis(f *excelize.File, doc Document) error {
	if err := clearRows(f, SheetBasis); err != nil {
		return err
	}

	headers := []string{"업무구분", "단위", "환산계수(α₁)", "보정계수(α₂, α₃)"}
	for _, g := range models.Grades {
		headers = append(headers, string(g))
	}
	for _, g := range models.Grades {
		headers = append(headers, string(g)+" 산식")
	}
	if err := writeRow(f, SheetBasis, 1, toAny(headers)); err != nil {
		return err
	}

	for i, row := range doc.Staffing {
		values := []any{row.TaskLabel, row.Unit, areaFlag(row), flag(row.AppliesCorrection)}
		for _, g := range models.Grades {
			if !row.Billable() {
				values = append(values, "")
				continue
			}
			values = append(values, row.Quantities[g])
		}
		for _, g := range models.Grades {
			values = append(values, row.Traces[g])
		}
		if err := writeRow(f, SheetBasis, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeRawTable(f *excelize.File, sheet string, t models.Table) error {
	if err := clearRows(f, sheet); err != nil {
		return err
	}
	if err := writeRow(f, sheet, 1, toAny(t.Headers)); err != nil {
		return err
	}
	for i, r := range t.Rows {
		values := make([]any, len(r))
		for j, cell := range r {
			if v, ok := util.ParseNumber(cell); ok {
				values[j] = v
				continue
			}
			values[j] = sanitizeExcelCell(cell)
		}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

// clearRows удаляет все строки листа, кроме первой.
func clearRows(f *excelize.File, sheet string) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	for i := len(rows); i >= 2; i-- {
		if err := f.RemoveRow(sheet, i); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func amount(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

// areaFlag показывает код правила α₁ для таблиц ОВОС.
func areaFlag(row models.AdjustedStaffingRow) string {
	if row.AreaRule > 0 {
		return strconv.Itoa(row.AreaRule)
	}
	return flag(row.AppliesArea)
}

func flag(v bool) string {
	if v {
		return "적용"
	}
	return "미적용"
}

// sanitizeExcelCell экранирует значения, которые Excel принял бы за формулу.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

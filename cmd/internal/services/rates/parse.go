package rates

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/apierrors"
	"github.com/zhukovvlad/designfee-go/cmd/internal/util"
)

// Имена колонок таблицы нормативов.
const (
	ColTask       = "업무구분"
	ColUnit       = "단위"
	ColArea       = "환산계수(α₁)"
	ColCorrection = "보정계수(α₂, α₃)"
)

// Колонки таблиц ставок.
const (
	ColGradeName     = "직종명"
	colGradeAlias    = "직종"
	ColInsuranceWork = "공종"
)

const (
	flagApplied    = "적용"
	flagNotApplied = "미적용"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// decode убирает BOM и переводит CP949/EUC-KR в UTF-8, если входные данные не UTF-8.
func decode(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, bomUTF8)
	if utf8.Valid(data) {
		return data, nil
	}
	out, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("не удалось декодировать EUC-KR: %w", err)
	}
	return out, nil
}

func normalizeHeader(h string) string {
	return norm.NFC.String(strings.TrimSpace(h))
}

// ParseTable разбирает CSV источника: нормализует заголовки и ячейки,
// выравнивает строки по числу колонок и проверяет обязательные колонки.
func ParseTable(source string, data []byte, required ...string) (models.Table, error) {
	decoded, err := decode(data)
	if err != nil {
		return models.Table{}, apierrors.NewDataUnavailableError(source, err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return models.Table{}, apierrors.NewSchemaMismatchError(source, required)
		}
		return models.Table{}, apierrors.NewDataUnavailableError(source, err)
	}
	for i, h := range headers {
		headers[i] = normalizeHeader(h)
	}

	table := models.Table{Headers: headers}
	if missing := missingColumns(table, required); len(missing) > 0 {
		return models.Table{}, apierrors.NewSchemaMismatchError(source, missing)
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return models.Table{}, apierrors.NewDataUnavailableError(source, err)
		}

		row := make([]string, len(headers))
		for i := range row {
			if i < len(record) {
				row[i] = norm.NFC.String(strings.TrimSpace(record[i]))
			}
		}
		if isBlank(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func missingColumns(t models.Table, required []string) []string {
	var missing []string
	for _, name := range required {
		if t.Column(name) < 0 {
			missing = append(missing, name)
		}
	}
	return missing
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

// normColumns - обязательные колонки таблицы нормативов.
func normColumns() []string {
	cols := []string{ColTask, ColUnit, ColArea, ColCorrection}
	for _, g := range models.Grades {
		cols = append(cols, string(g))
	}
	return cols
}

// ParseNormTable строит таблицу нормативов. Колонка α₁ содержит «적용»/«미적용»
// или код правила (1, 2, 3) для таблиц ОВОС.
func ParseNormTable(phase models.DesignPhase, data []byte) (models.NormTable, error) {
	raw, err := ParseTable(string(phase), data, normColumns()...)
	if err != nil {
		return models.NormTable{}, err
	}

	idx := map[string]int{}
	for _, c := range normColumns() {
		idx[c] = raw.Column(c)
	}

	out := models.NormTable{Phase: phase, Raw: raw, Rows: make([]models.StaffingNormRow, 0, len(raw.Rows))}
	for i, rec := range raw.Rows {
		applies, rule := parseAreaFlag(rec[idx[ColArea]])
		row := models.StaffingNormRow{
			RowID:             i,
			TaskLabel:         rec[idx[ColTask]],
			Unit:              rec[idx[ColUnit]],
			AppliesArea:       applies,
			AreaRule:          rule,
			AppliesCorrection: rec[idx[ColCorrection]] == flagApplied,
			Base:              make(map[models.Grade]float64, len(models.Grades)),
		}
		for _, g := range models.Grades {
			v, _ := util.ParseNumber(rec[idx[string(g)]])
			row.Base[g] = v
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func parseAreaFlag(v string) (bool, int) {
	switch v {
	case flagApplied:
		return true, 0
	case "", flagNotApplied:
		return false, 0
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return true, n
	}
	return false, 0
}

// ParseWageTable разбирает ставки оплаты труда. Колонка «직종» считается синонимом «직종명».
// Строки с неизвестной квалификацией или нечисловой ставкой пропускаются.
func ParseWageTable(data []byte) (models.WageTable, error) {
	const source = "노임단가"

	raw, err := ParseTable(source, data)
	if err != nil {
		return models.WageTable{}, err
	}
	if raw.Column(ColGradeName) < 0 {
		if i := raw.Column(colGradeAlias); i >= 0 {
			raw.Headers[i] = ColGradeName
		}
	}
	if missing := missingColumns(raw, []string{ColGradeName}); len(missing) > 0 {
		return models.WageTable{}, apierrors.NewSchemaMismatchError(source, missing)
	}

	categories := []models.WorkCategory{models.WorkConstruction, models.WorkEnvironmental}
	present := 0
	for _, c := range categories {
		if raw.Column(string(c)) >= 0 {
			present++
		}
	}
	if present == 0 {
		return models.WageTable{}, apierrors.NewSchemaMismatchError(source,
			[]string{string(models.WorkConstruction), string(models.WorkEnvironmental)})
	}

	out := models.WageTable{Raw: raw, Rates: make(map[models.WorkCategory]map[models.Grade]float64)}
	nameCol := raw.Column(ColGradeName)
	for _, c := range categories {
		col := raw.Column(string(c))
		if col < 0 {
			continue
		}
		rates := make(map[models.Grade]float64, len(models.Grades))
		for _, rec := range raw.Rows {
			grade, ok := models.ParseGrade(rec[nameCol])
			if !ok {
				continue
			}
			if v, ok := util.ParseNumber(rec[col]); ok && v > 0 {
				rates[grade] = v
			}
		}
		out.Rates[c] = rates
	}
	return out, nil
}

// ParseInsuranceTable разбирает ставки страхового взноса: ключ - «공종»,
// ставка - первая числовая колонка строки.
func ParseInsuranceTable(data []byte) (models.InsuranceTable, error) {
	const source = "손해보험요율"

	raw, err := ParseTable(source, data, ColInsuranceWork)
	if err != nil {
		return models.InsuranceTable{}, err
	}

	keyCol := raw.Column(ColInsuranceWork)
	out := models.InsuranceTable{Raw: raw, Rates: make(map[string]float64, len(raw.Rows))}
	for _, rec := range raw.Rows {
		for i, cell := range rec {
			if i == keyCol {
				continue
			}
			if v, ok := util.ParseNumber(cell); ok {
				out.Rates[rec[keyCol]] = v
				break
			}
		}
	}
	return out, nil
}

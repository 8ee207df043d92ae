package testutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// AssertJSONEqual сравнивает два JSON объекта независимо от порядка полей
func AssertJSONEqual(t *testing.T, expected, actual string) {
	t.Helper()

	var expectedJSON, actualJSON interface{}

	err := json.Unmarshal([]byte(expected), &expectedJSON)
	require.NoError(t, err, "Invalid expected JSON")

	err = json.Unmarshal([]byte(actual), &actualJSON)
	require.NoError(t, err, "Invalid actual JSON")

	assert.Equal(t, expectedJSON, actualJSON)
}

// AssertErrorContains проверяет, что ошибка содержит определенную подстроку
func AssertErrorContains(t *testing.T, err error, substring string) {
	t.Helper()

	require.Error(t, err, "Expected an error but got nil")
	assert.Contains(t, err.Error(), substring)
}

// AssertErrorAs проверяет тип ошибки в цепочке (errors.As) и возвращает её.
func AssertErrorAs[T error](t *testing.T, err error) T {
	t.Helper()

	var target T
	require.Error(t, err, "Expected an error but got nil")
	require.True(t, errors.As(err, &target), "unexpected error type: %T (%v)", err, err)
	return target
}

// AssertMoney сравнивает денежные суммы с точностью до копейки (0.005).
func AssertMoney(t *testing.T, expected, actual float64, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, expected, actual, 0.005, msgAndArgs...)
}

// AssertWholeThousands проверяет, что сумма усечена до тысяч.
func AssertWholeThousands(t *testing.T, v float64) {
	t.Helper()
	assert.Equal(t, 0.0, math.Mod(v, 1000), "сумма %v не кратна 1000", v)
}

// OpenWorkbook открывает книгу из ответа; закрывается по завершении теста.
func OpenWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err, "Failed to open workbook")
	t.Cleanup(func() { _ = f.Close() })
	return f
}

// AssertCell проверяет значение ячейки книги.
func AssertCell(t *testing.T, f *excelize.File, sheet, axis, expected string) {
	t.Helper()

	v, err := f.GetCellValue(sheet, axis)
	require.NoError(t, err)
	assert.Equal(t, expected, v, "%s!%s", sheet, axis)
}

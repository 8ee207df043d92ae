package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// WriteTemplate создает во временном каталоге шаблон книги с листами sheets.
// staleRows задаёт листы, в которых остаются строки прошлой выгрузки
// (колонка A, значение "old").
func WriteTemplate(t *testing.T, staleRows map[string]int, sheets ...string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), name))
			continue
		}
		_, err := f.NewSheet(name)
		require.NoError(t, err)
	}
	for sheet, n := range staleRows {
		for r := 1; r <= n; r++ {
			require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("A%d", r), "old"))
		}
	}

	path := filepath.Join(t.TempDir(), "template.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

package rates

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/apierrors"
	"github.com/zhukovvlad/designfee-go/cmd/internal/testutil"
)

func TestParseNormTable(t *testing.T) {
	t.Run("таблица ландшафта", func(t *testing.T) {
		table, err := ParseNormTable(models.PhaseBasic, []byte(testutil.LandscapeNormsCSV))
		require.NoError(t, err)

		want := testutil.LandscapeNorms()
		require.Len(t, table.Rows, len(want.Rows))
		assert.Equal(t, ColTask, table.Raw.Headers[0], "заголовок обрезан")

		for i, w := range want.Rows {
			got := table.Rows[i]
			assert.Equal(t, w.RowID, got.RowID)
			assert.Equal(t, w.TaskLabel, got.TaskLabel)
			assert.Equal(t, w.Unit, got.Unit)
			assert.Equal(t, w.AppliesArea, got.AppliesArea, w.TaskLabel)
			assert.Equal(t, w.AppliesCorrection, got.AppliesCorrection, w.TaskLabel)
			if w.Billable() {
				assert.Equal(t, w.Base, got.Base, w.TaskLabel)
			}
		}
	})

	t.Run("коды правил α₁ в таблице ОВОС", func(t *testing.T) {
		table, err := ParseNormTable(models.PhaseSmallScaleEIA, []byte(testutil.EnvironmentalNormsCSV))
		require.NoError(t, err)
		require.Len(t, table.Rows, 4)

		assert.Equal(t, 1, table.Rows[0].AreaRule)
		assert.Equal(t, 2, table.Rows[1].AreaRule)
		assert.Equal(t, 3, table.Rows[2].AreaRule)
		assert.True(t, table.Rows[2].AppliesArea)
		assert.False(t, table.Rows[3].AppliesCorrection)
	})

	t.Run("BOM в начале файла", func(t *testing.T) {
		withBOM := append([]byte{0xEF, 0xBB, 0xBF}, []byte(testutil.EnvironmentalNormsCSV)...)
		table, err := ParseNormTable(models.PhaseSmallScaleEIA, withBOM)
		require.NoError(t, err)
		assert.Equal(t, ColTask, table.Raw.Headers[0])
	})

	t.Run("нет обязательной колонки", func(t *testing.T) {
		data := []byte("업무구분,단위,기술사\n1.1 현황조사,일,1\n")

		_, err := ParseNormTable(models.PhaseBasic, data)
		var sErr *apierrors.SchemaMismatchError
		require.True(t, errors.As(err, &sErr))
		assert.Contains(t, sErr.Missing, ColArea)
		assert.Contains(t, sErr.Missing, string(models.GradeJunior))
	})

	t.Run("NaN и Infinity в нормативах дают ноль", func(t *testing.T) {
		data := []byte("업무구분,단위,환산계수(α₁),\"보정계수(α₂, α₃)\",기술사,특급기술자,고급기술자,중급기술자,초급기술자\n" +
			"1.1 현황조사,일,적용,적용,NaN,Infinity,2,-Inf,3\n")

		table, err := ParseNormTable(models.PhaseBasic, data)
		require.NoError(t, err)
		require.Len(t, table.Rows, 1)

		base := table.Rows[0].Base
		assert.Equal(t, 0.0, base[models.GradePrincipalEngineer])
		assert.Equal(t, 0.0, base[models.GradeSeniorSpecialist1])
		assert.Equal(t, 2.0, base[models.GradeSeniorSpecialist2])
		assert.Equal(t, 0.0, base[models.GradeMidLevel])
		assert.Equal(t, 3.0, base[models.GradeJunior])
	})

	t.Run("пустой файл", func(t *testing.T) {
		_, err := ParseNormTable(models.PhaseBasic, nil)
		var sErr *apierrors.SchemaMismatchError
		assert.True(t, errors.As(err, &sErr))
	})
}

func TestParseWageTable(t *testing.T) {
	t.Run("синоним колонки и разделители тысяч", func(t *testing.T) {
		wages, err := ParseWageTable([]byte(testutil.WagesCSV))
		require.NoError(t, err)

		assert.Equal(t, ColGradeName, wages.Raw.Headers[0])
		assert.Equal(t, testutil.LandscapeWages().Rates, wages.Rates)

		_, ok := wages.Rate(models.WorkConstruction, models.GradeJunior)
		assert.False(t, ok)
	})

	t.Run("кодировка CP949", func(t *testing.T) {
		encoded, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(testutil.WagesCSV))
		require.NoError(t, err)

		wages, err := ParseWageTable(encoded)
		require.NoError(t, err)
		assert.Equal(t, testutil.LandscapeWages().Rates, wages.Rates)
	})

	t.Run("некорректные строки пропускаются", func(t *testing.T) {
		data := []byte("직종명,건설\n 기술사 ,abc\n특급기술자,\"310,000\"\n설계사,100\n")

		wages, err := ParseWageTable(data)
		require.NoError(t, err)
		assert.Equal(t, map[models.Grade]float64{models.GradeSeniorSpecialist1: 310000}, wages.Rates[models.WorkConstruction])
	})

	t.Run("NaN и Infinity вместо ставки", func(t *testing.T) {
		data := []byte("직종명,건설\n기술사,Infinity\n특급기술자,NaN\n고급기술자,\"250,000\"\n")

		wages, err := ParseWageTable(data)
		require.NoError(t, err)

		_, ok := wages.Rate(models.WorkConstruction, models.GradePrincipalEngineer)
		assert.False(t, ok)
		_, ok = wages.Rate(models.WorkConstruction, models.GradeSeniorSpecialist1)
		assert.False(t, ok)
		rate, ok := wages.Rate(models.WorkConstruction, models.GradeSeniorSpecialist2)
		assert.True(t, ok)
		assert.Equal(t, 250000.0, rate)
	})

	t.Run("нет колонок ставок", func(t *testing.T) {
		_, err := ParseWageTable([]byte("직종명,비고\n기술사,-\n"))
		var sErr *apierrors.SchemaMismatchError
		assert.True(t, errors.As(err, &sErr))
	})

	t.Run("нет колонки квалификации", func(t *testing.T) {
		_, err := ParseWageTable([]byte("등급,건설\n기술사,1\n"))
		var sErr *apierrors.SchemaMismatchError
		require.True(t, errors.As(err, &sErr))
		assert.Equal(t, []string{ColGradeName}, sErr.Missing)
	})
}

func TestParseInsuranceTable(t *testing.T) {
	ins, err := ParseInsuranceTable([]byte(testutil.InsuranceCSV))
	require.NoError(t, err)

	rate, ok := ins.Rate("관람집회공사")
	assert.True(t, ok)
	assert.Equal(t, 0.432, rate)
	assert.Len(t, ins.Raw.Rows, 2)
}

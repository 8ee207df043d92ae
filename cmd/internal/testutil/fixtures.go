package testutil

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
)

// URL-адреса тестовых источников (StaticSource отвечает по ним).
const (
	BasicNormsURL    = "https://sheets.test/basic.csv"
	DetailedNormsURL = "https://sheets.test/detailed.csv"
	EnvNormsURL      = "https://sheets.test/env.csv"
	WagesURL         = "https://sheets.test/wages.csv"
	InsuranceURL     = "https://sheets.test/insurance.csv"
)

// LandscapeNormsCSV - таблица нормативов ландшафтного проектирования в формате источника.
// Заголовки с пробелами и числа с разделителями - как в опубликованных таблицах.
const LandscapeNormsCSV = ` 업무구분 ,단위,환산계수(α₁),"보정계수(α₂, α₃)",기술사,특급기술자,고급기술자,중급기술자,초급기술자
1. 기본조사,,,,,,,,
1.1 현황조사,일,적용,적용,1,2,2,3,3
조사,일,적용,적용,0,1,1,2,2
2.1 기본구상,일,적용,적용,2,2,3,3,4
2.1.1 설계도면 작성,일,적용,미적용,0,1,2,4,6
2.2 위원회 심의,회,미적용,미적용,0.5,1,1,0,0
2.3 주민설명회,회,미적용,미적용,0,1,1,1,0
3. 보고서 인쇄,식,미적용,미적용,0,0,0,1,1
※ 주: 인쇄비는 직접경비로 계상,,,,,,,,
`

// EnvironmentalNormsCSV - нормативы ОВОС: колонка α₁ содержит код правила.
const EnvironmentalNormsCSV = `업무구분,단위,환산계수(α₁),"보정계수(α₂, α₃)",기술사,특급기술자,고급기술자,중급기술자,초급기술자
1. 사업계획 검토,일,1,적용,1,1,1,1,1
현지조사,일,2,적용,0,1,2,2,3
2.1 평가서 작성,일,3,적용,1,2,2,3,3
2.2 관계기관 협의,회,1,미적용,0,1,1,0,0
`

// WagesCSV - ставки: квалификация «초급기술자» отсутствует намеренно.
const WagesCSV = `직종 ,건설,환경
기술사,"385,413","401,000"
특급기술자,"310,000","320,500"
고급기술자,"250,000","255,000"
중급기술자,"200,000","205,000"
`

const InsuranceCSV = `공종,요율(%)
관람집회공사,0.432
일반건축,0.321
`

// NormURLs - соответствие стадия -> URL для тестового Repository.
func NormURLs() map[string]string {
	return map[string]string{
		string(models.PhaseBasic):         BasicNormsURL,
		string(models.PhaseDetailed):      DetailedNormsURL,
		string(models.PhaseSmallScaleEIA): EnvNormsURL,
	}
}

// SourcePayloads - ответы StaticSource по умолчанию.
func SourcePayloads() map[string][]byte {
	return map[string][]byte{
		BasicNormsURL:    []byte(LandscapeNormsCSV),
		DetailedNormsURL: []byte(LandscapeNormsCSV),
		EnvNormsURL:      []byte(EnvironmentalNormsCSV),
		WagesURL:         []byte(WagesCSV),
		InsuranceURL:     []byte(InsuranceCSV),
	}
}

// StaticSource - источник таблиц в памяти для тестов сервисов и HTTP-слоя.
type StaticSource struct {
	Payloads map[string][]byte
	// OnFetch вызывается перед каждым ответом, если задан.
	OnFetch func(url string)
	calls   atomic.Int64
}

// NewStaticSource возвращает источник с ответами SourcePayloads.
func NewStaticSource() *StaticSource {
	return &StaticSource{Payloads: SourcePayloads()}
}

func (s *StaticSource) Fetch(_ context.Context, url string) ([]byte, error) {
	s.calls.Add(1)
	if s.OnFetch != nil {
		s.OnFetch(url)
	}
	data, ok := s.Payloads[url]
	if !ok {
		return nil, fmt.Errorf("404 Not Found: %s", url)
	}
	return data, nil
}

// Calls - число обращений к источнику.
func (s *StaticSource) Calls() int64 {
	return s.calls.Load()
}

// NormRow собирает строку норматива с базовыми значениями в порядке models.Grades.
func NormRow(id int, label, unit string, area, correction bool, base ...float64) models.StaffingNormRow {
	row := models.StaffingNormRow{
		RowID:             id,
		TaskLabel:         label,
		Unit:              unit,
		AppliesArea:       area,
		AppliesCorrection: correction,
		Base:              make(map[models.Grade]float64, len(models.Grades)),
	}
	for i, g := range models.Grades {
		if i < len(base) {
			row.Base[g] = base[i]
		}
	}
	return row
}

// LandscapeNorms - то же, что LandscapeNormsCSV, но уже разобранное.
func LandscapeNorms() models.NormTable {
	return models.NormTable{
		Phase: models.PhaseBasic,
		Rows: []models.StaffingNormRow{
			NormRow(0, "1. 기본조사", "", false, false),
			NormRow(1, "1.1 현황조사", "일", true, true, 1, 2, 2, 3, 3),
			NormRow(2, "조사", "일", true, true, 0, 1, 1, 2, 2),
			NormRow(3, "2.1 기본구상", "일", true, true, 2, 2, 3, 3, 4),
			NormRow(4, "2.1.1 설계도면 작성", "일", true, false, 0, 1, 2, 4, 6),
			NormRow(5, "2.2 위원회 심의", "회", false, false, 0.5, 1, 1, 0, 0),
			NormRow(6, "2.3 주민설명회", "회", false, false, 0, 1, 1, 1, 0),
			NormRow(7, "3. 보고서 인쇄", "식", false, false, 0, 0, 0, 1, 1),
			NormRow(8, "※ 주: 인쇄비는 직접경비로 계상", "", false, false),
		},
	}
}

// LandscapeWages - разобранный WagesCSV.
func LandscapeWages() models.WageTable {
	return models.WageTable{
		Rates: map[models.WorkCategory]map[models.Grade]float64{
			models.WorkConstruction: {
				models.GradePrincipalEngineer: 385413,
				models.GradeSeniorSpecialist1: 310000,
				models.GradeSeniorSpecialist2: 250000,
				models.GradeMidLevel:          200000,
			},
			models.WorkEnvironmental: {
				models.GradePrincipalEngineer: 401000,
				models.GradeSeniorSpecialist1: 320500,
				models.GradeSeniorSpecialist2: 255000,
				models.GradeMidLevel:          205000,
			},
		},
	}
}

// UrbanParkProfile - профиль сценария «5000 м², городской парк, 보통».
func UrbanParkProfile() models.ServiceTypeProfile {
	return models.ServiceTypeProfile{
		Category:      models.CategoryLandscape,
		Phase:         models.PhaseBasic,
		SiteCharacter: models.SiteUrbanPark,
		Difficulty:    models.DifficultyNormal,
		Area:          5000,
	}
}

package policy

import (
	"math"

	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
)

// Границы и показатели степени α₁ для ОВОС.
const (
	envBaseArea      = 10_000.0
	envSmallExponent = 0.6 // площадь меньше базовой
	envLargeExponent = 0.3 // площадь больше базовой
	envRule2Cap      = 2.00
	envRule3Cap      = 3.98
)

// Правила α₁ (колонка «환산계수(α₁)» таблицы ОВОС).
const (
	EnvAreaRuleFixed  = 1 // всегда 1.00
	EnvAreaRuleMedium = 2 // потолок 2.00, достигается около 100 000 м²
	EnvAreaRuleLarge  = 3 // потолок 3.98, достигается на 1 000 000 м²
)

var envFactorValues = map[models.EnvFactor]float64{
	models.EnvFactorFieldSurvey:      1.20,
	models.EnvFactorExpertReview:     2.00,
	models.EnvFactorCumulativeImpact: 1.15,
	models.EnvFactorProtectedArea:    1.40,
}

// EnvFactors - порядок факторов в форме.
var EnvFactors = []models.EnvFactor{
	models.EnvFactorFieldSurvey,
	models.EnvFactorExpertReview,
	models.EnvFactorCumulativeImpact,
	models.EnvFactorProtectedArea,
}

var envDifficulty = []difficultyTable{
	{
		site:    models.SiteIndustrialComplex,
		options: []models.Difficulty{models.DifficultyNormal, models.DifficultyComplex, models.DifficultyVeryComplex},
		values: map[models.Difficulty]float64{
			models.DifficultyNormal: 1.0, models.DifficultyComplex: 1.1, models.DifficultyVeryComplex: 1.2,
		},
	},
	{
		site:    models.SiteRoad,
		options: []models.Difficulty{models.DifficultySimple, models.DifficultyNormal, models.DifficultyComplex},
		values: map[models.Difficulty]float64{
			models.DifficultySimple: 0.9, models.DifficultyNormal: 1.0, models.DifficultyComplex: 1.1,
		},
	},
	{
		site:    models.SiteHousingDevelop,
		options: []models.Difficulty{models.DifficultySimple, models.DifficultyNormal},
		values: map[models.Difficulty]float64{
			models.DifficultySimple: 0.9, models.DifficultyNormal: 1.0,
		},
	},
	{
		site:    models.SiteTourismResort,
		options: []models.Difficulty{models.DifficultyNormal, models.DifficultyComplex},
		values: map[models.Difficulty]float64{
			models.DifficultyNormal: 1.0, models.DifficultyComplex: 1.15,
		},
	},
}

type environmentalPolicy struct {
	techFeeIncludesExpense bool
}

func newEnvironmentalPolicy(techFeeIncludesExpense bool) *environmentalPolicy {
	return &environmentalPolicy{techFeeIncludesExpense: techFeeIncludesExpense}
}

func (p *environmentalPolicy) Category() models.ServiceCategory { return models.CategoryEnvironmental }

func (p *environmentalPolicy) Phases() []models.DesignPhase {
	return []models.DesignPhase{models.PhaseSmallScaleEIA}
}

func (p *environmentalPolicy) SiteCharacters() []models.SiteCharacter {
	return []models.SiteCharacter{
		models.SiteIndustrialComplex,
		models.SiteRoad,
		models.SiteHousingDevelop,
		models.SiteTourismResort,
	}
}

func (p *environmentalPolicy) DifficultyOptions(site models.SiteCharacter) []models.Difficulty {
	return difficultyOptions(envDifficulty, site)
}

func (p *environmentalPolicy) AreaCoefficient(area float64, row models.StaffingNormRow) float64 {
	return EnvAreaCoefficient(row.AreaRule, area)
}

// EnvAreaCoefficient вычисляет α₁ по коду правила строки:
//
//	rule 1:    1.00
//	rule 2, 3: (A/10 000)^0.6 при A < 10 000, (A/10 000)^0.3 при A ≥ 10 000,
//	           не больше 2.00 (rule 2) или 3.98 (rule 3).
//
// Неизвестный код трактуется как rule 1.
func EnvAreaCoefficient(rule int, area float64) float64 {
	var limit float64
	switch rule {
	case EnvAreaRuleMedium:
		limit = envRule2Cap
	case EnvAreaRuleLarge:
		limit = envRule3Cap
	default:
		return 1.0
	}
	var v float64
	if area < envBaseArea {
		v = math.Pow(area/envBaseArea, envSmallExponent)
	} else {
		v = math.Pow(area/envBaseArea, envLargeExponent)
	}
	return math.Min(v, limit)
}

// SiteCoefficient - произведение включённых факторов (каждый «적용»/«미적용» независимо).
func (p *environmentalPolicy) SiteCoefficient(profile models.ServiceTypeProfile) float64 {
	v := 1.0
	for _, f := range EnvFactors {
		if profile.HasEnvFactor(f) {
			v *= envFactorValues[f]
		}
	}
	return v
}

func (p *environmentalPolicy) DifficultyCoefficient(site models.SiteCharacter, d models.Difficulty) float64 {
	return lookupDifficulty(envDifficulty, site, d)
}

func (p *environmentalPolicy) ExcludedFromCorrection(taskLabel string) bool {
	return hasExcludedLabel([]string{"현지조사", "기술협의", "협의회 운영"}, taskLabel)
}

func (p *environmentalPolicy) ReusePrefix() string { return "2.1" }

func (p *environmentalPolicy) WageCategory() models.WorkCategory { return models.WorkEnvironmental }

func (p *environmentalPolicy) TechFeeIncludesDirectExpense() bool { return p.techFeeIncludesExpense }

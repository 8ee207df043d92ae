package policy

import (
	"math"

	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
)

// landscapeBaseArea - площадь, для которой нормативы заданы без пересчёта.
const landscapeBaseArea = 5000.0

var landscapeSiteFactors = map[models.SiteCharacter]float64{
	models.SiteUrbanPark:            1.0,
	models.SiteResidentialLandscape: 1.1,
	models.SiteGreenSpace:           0.8,
	models.SiteThemedProject:        1.2,
}

// Для всех характеров участка ландшафта действует одна шкала сложности.
var landscapeDifficultyValues = map[models.Difficulty]float64{
	models.DifficultySimple:  0.9,
	models.DifficultyNormal:  1.0,
	models.DifficultyComplex: 1.1,
}

var landscapeDifficulty = uniformDifficulty(
	[]models.SiteCharacter{
		models.SiteUrbanPark,
		models.SiteResidentialLandscape,
		models.SiteGreenSpace,
		models.SiteThemedProject,
	},
	[]models.Difficulty{models.DifficultySimple, models.DifficultyNormal, models.DifficultyComplex},
	landscapeDifficultyValues,
)

type landscapePolicy struct {
	techFeeIncludesExpense bool
}

func newLandscapePolicy(techFeeIncludesExpense bool) *landscapePolicy {
	return &landscapePolicy{techFeeIncludesExpense: techFeeIncludesExpense}
}

func (p *landscapePolicy) Category() models.ServiceCategory { return models.CategoryLandscape }

func (p *landscapePolicy) Phases() []models.DesignPhase {
	return []models.DesignPhase{
		models.PhaseBasic,
		models.PhaseDetailed,
		models.PhaseBasicAndDetailed,
		models.PhaseBarrierFree,
	}
}

func (p *landscapePolicy) SiteCharacters() []models.SiteCharacter {
	return []models.SiteCharacter{
		models.SiteUrbanPark,
		models.SiteResidentialLandscape,
		models.SiteGreenSpace,
		models.SiteThemedProject,
	}
}

func (p *landscapePolicy) DifficultyOptions(site models.SiteCharacter) []models.Difficulty {
	return difficultyOptions(landscapeDifficulty, site)
}

// AreaCoefficient: (A/5000)^0.7 до 5000 м² включительно, (A/5000)^0.4 выше.
// Обе ветви дают 1.0 на границе.
func (p *landscapePolicy) AreaCoefficient(area float64, _ models.StaffingNormRow) float64 {
	return LandscapeAreaCoefficient(area)
}

// LandscapeAreaCoefficient вынесен отдельно для отображения коэффициента в форме.
func LandscapeAreaCoefficient(area float64) float64 {
	if area <= landscapeBaseArea {
		return math.Pow(area/landscapeBaseArea, 0.7)
	}
	return math.Pow(area/landscapeBaseArea, 0.4)
}

func (p *landscapePolicy) SiteCoefficient(profile models.ServiceTypeProfile) float64 {
	if v, ok := landscapeSiteFactors[profile.SiteCharacter]; ok {
		return v
	}
	return 1.0
}

func (p *landscapePolicy) DifficultyCoefficient(site models.SiteCharacter, d models.Difficulty) float64 {
	return lookupDifficulty(landscapeDifficulty, site, d)
}

func (p *landscapePolicy) ExcludedFromCorrection(taskLabel string) bool {
	return hasExcludedLabel([]string{"조사", "기술협의"}, taskLabel)
}

func (p *landscapePolicy) ReusePrefix() string { return "2.1" }

func (p *landscapePolicy) WageCategory() models.WorkCategory { return models.WorkConstruction }

func (p *landscapePolicy) TechFeeIncludesDirectExpense() bool { return p.techFeeIncludesExpense }

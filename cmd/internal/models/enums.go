package models

// ServiceCategory - вид проектной услуги.
type ServiceCategory string

const (
	CategoryLandscape     ServiceCategory = "조경"
	CategoryEnvironmental ServiceCategory = "환경영향평가"
)

// DesignPhase - стадия проектирования; определяет таблицу нормативов.
type DesignPhase string

const (
	PhaseBasic            DesignPhase = "기본설계"
	PhaseDetailed         DesignPhase = "실시설계"
	PhaseBasicAndDetailed DesignPhase = "기본 및 실시설계"
	PhaseBarrierFree      DesignPhase = "BF 예비인증"
	PhaseSmallScaleEIA    DesignPhase = "소규모환경영향평가"
)

// Grade - квалификационная категория специалиста.
type Grade string

const (
	GradePrincipalEngineer Grade = "기술사"
	GradeSeniorSpecialist1 Grade = "특급기술자"
	GradeSeniorSpecialist2 Grade = "고급기술자"
	GradeMidLevel          Grade = "중급기술자"
	GradeJunior            Grade = "초급기술자"
)

// Grades - фиксированный порядок колонок во всех таблицах.
var Grades = []Grade{
	GradePrincipalEngineer,
	GradeSeniorSpecialist1,
	GradeSeniorSpecialist2,
	GradeMidLevel,
	GradeJunior,
}

// ParseGrade проверяет точное совпадение с фиксированным набором.
func ParseGrade(s string) (Grade, bool) {
	for _, g := range Grades {
		if string(g) == s {
			return g, true
		}
	}
	return "", false
}

// SiteCharacter - характер участка; набор зависит от вида услуги.
type SiteCharacter string

const (
	SiteUrbanPark            SiteCharacter = "도시공원"
	SiteResidentialLandscape SiteCharacter = "공동주택 및 대지의 조경"
	SiteGreenSpace           SiteCharacter = "녹지 및 도시숲"
	SiteThemedProject        SiteCharacter = "주제형 사업"

	SiteIndustrialComplex SiteCharacter = "산업단지"
	SiteRoad              SiteCharacter = "도로"
	SiteHousingDevelop    SiteCharacter = "택지개발"
	SiteTourismResort     SiteCharacter = "관광휴양"
)

// Difficulty - сложность работ.
type Difficulty string

const (
	DifficultySimple      Difficulty = "단순"
	DifficultyNormal      Difficulty = "보통"
	DifficultyComplex     Difficulty = "복잡"
	DifficultyVeryComplex Difficulty = "매우복잡"
)

// EnvFactor - независимо включаемый поправочный фактор α₂ для ОВОС.
type EnvFactor string

const (
	EnvFactorFieldSurvey      EnvFactor = "현지조사"
	EnvFactorExpertReview     EnvFactor = "전문기관 검토"
	EnvFactorCumulativeImpact EnvFactor = "누적영향 평가"
	EnvFactorProtectedArea    EnvFactor = "보호지역 인접"
)

// WorkCategory - колонка ставок в таблице оплаты труда.
type WorkCategory string

const (
	WorkConstruction  WorkCategory = "건설"
	WorkEnvironmental WorkCategory = "환경"
)

// UnitLumpSum - единица «комплект».
const UnitLumpSum = "식"

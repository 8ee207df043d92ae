// Package policy описывает различия между видами услуг (ландшафтное проектирование
// и ОВОС): правило коэффициента площади α₁, таблицы α₂/α₃, исключения из поправок,
// код ветки повторного использования и базу технического сбора.
// Конвейер расчёта один, политика выбирается один раз при построении контекста.
package policy

import (
	"fmt"
	"strings"

	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/apierrors"
)

// ReuseFactor - понижающий множитель для задач, использующих результаты предыдущей стадии.
const ReuseFactor = 0.7

// ServiceDomainPolicy - набор правил одного вида услуг.
type ServiceDomainPolicy interface {
	Category() models.ServiceCategory
	Phases() []models.DesignPhase
	SiteCharacters() []models.SiteCharacter
	DifficultyOptions(site models.SiteCharacter) []models.Difficulty

	// AreaCoefficient - α₁ для строки норматива.
	AreaCoefficient(area float64, row models.StaffingNormRow) float64
	// SiteCoefficient - α₂.
	SiteCoefficient(profile models.ServiceTypeProfile) float64
	// DifficultyCoefficient - α₃.
	DifficultyCoefficient(site models.SiteCharacter, difficulty models.Difficulty) float64

	ExcludedFromCorrection(taskLabel string) bool
	ReusePrefix() string
	WageCategory() models.WorkCategory
	TechFeeIncludesDirectExpense() bool
}

// Options - переключатели, вынесенные в конфигурацию.
type Options struct {
	LandscapeTechFeeIncludesExpense     bool
	EnvironmentalTechFeeIncludesExpense bool
}

// DefaultOptions: для ландшафта база технического сбора включает прямые расходы
// (последняя ревизия методики), для ОВОС - нет.
func DefaultOptions() Options {
	return Options{
		LandscapeTechFeeIncludesExpense:     true,
		EnvironmentalTechFeeIncludesExpense: false,
	}
}

// Registry выдаёт политику по виду услуг.
type Registry struct {
	policies map[models.ServiceCategory]ServiceDomainPolicy
	order    []models.ServiceCategory
}

func NewRegistry(opts Options) *Registry {
	landscape := newLandscapePolicy(opts.LandscapeTechFeeIncludesExpense)
	env := newEnvironmentalPolicy(opts.EnvironmentalTechFeeIncludesExpense)
	return &Registry{
		policies: map[models.ServiceCategory]ServiceDomainPolicy{
			landscape.Category(): landscape,
			env.Category():       env,
		},
		order: []models.ServiceCategory{landscape.Category(), env.Category()},
	}
}

// For возвращает политику или ValidationError для неизвестного вида услуг.
func (r *Registry) For(category models.ServiceCategory) (ServiceDomainPolicy, error) {
	p, ok := r.policies[category]
	if !ok {
		return nil, apierrors.NewValidationError("неизвестный вид услуг: %q", category)
	}
	return p, nil
}

// Categories возвращает виды услуг в порядке отображения.
func (r *Registry) Categories() []models.ServiceCategory {
	out := make([]models.ServiceCategory, len(r.order))
	copy(out, r.order)
	return out
}

// PhaseCategory определяет вид услуг по стадии проектирования.
func (r *Registry) PhaseCategory(phase models.DesignPhase) (models.ServiceCategory, bool) {
	for _, c := range r.order {
		for _, ph := range r.policies[c].Phases() {
			if ph == phase {
				return c, true
			}
		}
	}
	return "", false
}

// Normalize приводит профиль к допустимому виду:
//   - неизвестная стадия - ValidationError;
//   - характер участка вне набора вида услуг - первый из набора;
//   - сложность вне набора для характера участка - первая допустимая (без ошибки);
//   - площадь должна быть > 0.
//
// Возвращает нормализованную копию и список применённых замен.
func Normalize(p ServiceDomainPolicy, profile models.ServiceTypeProfile) (models.ServiceTypeProfile, []string, error) {
	out := profile
	out.Category = p.Category()
	out.EnvFactors = append([]models.EnvFactor(nil), profile.EnvFactors...)
	var fallbacks []string

	if !containsPhase(p.Phases(), profile.Phase) {
		return out, nil, apierrors.NewValidationError("стадия %q недоступна для вида услуг %q", profile.Phase, p.Category())
	}
	if profile.Area <= 0 {
		return out, nil, apierrors.NewValidationError("площадь должна быть положительной, получено: %v", profile.Area)
	}

	sites := p.SiteCharacters()
	if !containsSite(sites, profile.SiteCharacter) {
		out.SiteCharacter = sites[0]
		fallbacks = append(fallbacks, fmt.Sprintf("site_character %q -> %q", profile.SiteCharacter, out.SiteCharacter))
	}

	options := p.DifficultyOptions(out.SiteCharacter)
	if !containsDifficulty(options, profile.Difficulty) {
		out.Difficulty = options[0]
		fallbacks = append(fallbacks, fmt.Sprintf("difficulty %q -> %q", profile.Difficulty, out.Difficulty))
	}

	return out, fallbacks, nil
}

func containsPhase(list []models.DesignPhase, v models.DesignPhase) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsSite(list []models.SiteCharacter, v models.SiteCharacter) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsDifficulty(list []models.Difficulty, v models.Difficulty) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// difficultyTable - α₃ по (характер участка, сложность); порядок опций важен для fallback.
type difficultyTable struct {
	site    models.SiteCharacter
	options []models.Difficulty
	values  map[models.Difficulty]float64
}

// uniformDifficulty строит одинаковые таблицы сложности для всех участков.
func uniformDifficulty(sites []models.SiteCharacter, options []models.Difficulty, values map[models.Difficulty]float64) []difficultyTable {
	tables := make([]difficultyTable, 0, len(sites))
	for _, site := range sites {
		tables = append(tables, difficultyTable{site: site, options: options, values: values})
	}
	return tables
}

func lookupDifficulty(tables []difficultyTable, site models.SiteCharacter, d models.Difficulty) float64 {
	for _, t := range tables {
		if t.site != site {
			continue
		}
		if v, ok := t.values[d]; ok {
			return v
		}
		return 1.0
	}
	return 1.0
}

func difficultyOptions(tables []difficultyTable, site models.SiteCharacter) []models.Difficulty {
	for _, t := range tables {
		if t.site == site {
			return append([]models.Difficulty(nil), t.options...)
		}
	}
	return append([]models.Difficulty(nil), tables[0].options...)
}

func hasExcludedLabel(excluded []string, label string) bool {
	label = strings.TrimSpace(label)
	for _, e := range excluded {
		if label == e {
			return true
		}
	}
	return false
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zhukovvlad/designfee-go/cmd/internal/api_models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/session"
)

func (s *Server) HomeHandler(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "Welcome to the Design Fee API",
	})
}

func (s *Server) getStatsHandler(c *gin.Context) {
	count, err := s.visits.Value(c.Request.Context())
	if err != nil {
		s.logger.Errorf("Ошибка при получении счётчика посещений: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"visits":  count,
		"message": "Статистика успешно получена",
	})
}

// optionsHandler отдаёт справочники формы: виды услуг, стадии, характеры участка
// с допустимыми сложностями и значения по умолчанию.
func (s *Server) optionsHandler(c *gin.Context) {
	registry := s.estimates.Registry()

	categories := make([]api_models.CategoryOption, 0, len(registry.Categories()))
	for _, cat := range registry.Categories() {
		pol, err := registry.For(cat)
		if err != nil {
			s.respondError(c, "optionsHandler", err)
			return
		}

		sites := make([]api_models.SiteOption, 0, len(pol.SiteCharacters()))
		for _, site := range pol.SiteCharacters() {
			sites = append(sites, api_models.SiteOption{
				Name:         string(site),
				Difficulties: stringsOf(pol.DifficultyOptions(site)),
			})
		}

		opt := api_models.CategoryOption{
			Name:                         string(cat),
			Phases:                       stringsOf(pol.Phases()),
			Sites:                        sites,
			TechFeeIncludesDirectExpense: pol.TechFeeIncludesDirectExpense(),
		}
		if cat == models.CategoryEnvironmental {
			opt.EnvFactors = stringsOf([]models.EnvFactor{
				models.EnvFactorFieldSurvey,
				models.EnvFactorExpertReview,
				models.EnvFactorCumulativeImpact,
				models.EnvFactorProtectedArea,
			})
		}
		categories = append(categories, opt)
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"grades":     stringsOf(models.Grades),
		"defaults":   session.DefaultInputs(),
	})
}

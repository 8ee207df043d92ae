package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
)

func (s *Server) getWagesHandler(c *gin.Context) {
	wages, err := s.rates.FetchWageTable(c.Request.Context())
	if err != nil {
		s.respondError(c, "getWagesHandler", err)
		return
	}
	c.JSON(http.StatusOK, wages)
}

func (s *Server) getInsuranceHandler(c *gin.Context) {
	insurance, err := s.rates.FetchInsuranceRates(c.Request.Context())
	if err != nil {
		s.respondError(c, "getInsuranceHandler", err)
		return
	}
	c.JSON(http.StatusOK, insurance)
}

// getNormsHandler - нормативы трудозатрат стадии (:phase, например «기본설계»).
func (s *Server) getNormsHandler(c *gin.Context) {
	phase := models.DesignPhase(strings.TrimSpace(c.Param("phase")))
	norms, err := s.rates.FetchStaffingNorms(c.Request.Context(), phase)
	if err != nil {
		s.respondError(c, "getNormsHandler", err)
		return
	}
	c.JSON(http.StatusOK, norms)
}

// invalidateCacheHandler сбрасывает кэш таблиц; следующий расчёт загрузит их заново.
func (s *Server) invalidateCacheHandler(c *gin.Context) {
	n := s.rates.Invalidate()
	s.logger.WithField("service", c.GetString("service")).Infof("Кэш таблиц сброшен по запросу (%d записей)", n)
	c.JSON(http.StatusOK, gin.H{
		"invalidated": n,
	})
}

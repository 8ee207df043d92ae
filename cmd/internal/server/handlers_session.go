package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zhukovvlad/designfee-go/cmd/internal/api_models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/apierrors"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/session"
)

// createSessionHandler заводит сессию и увеличивает счётчик посещений.
// Ошибка счётчика не мешает работе.
func (s *Server) createSessionHandler(c *gin.Context) {
	sess := s.sessions.Create()

	if _, err := s.visits.Increment(c.Request.Context()); err != nil {
		s.logger.WithField("handler", "createSessionHandler").Warnf("Счётчик посещений не обновлён: %v", err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":     sess.ID,
		"inputs": sess.EffectiveInputs(),
	})
}

func (s *Server) getSessionHandler(c *gin.Context) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		s.respondError(c, "getSessionHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session": sess,
		"inputs":  sess.EffectiveInputs(),
	})
}

func (s *Server) deleteSessionHandler(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.sessions.Get(id); err != nil {
		s.respondError(c, "deleteSessionHandler", err)
		return
	}
	s.sessions.Delete(id)
	c.Status(http.StatusNoContent)
}

// putInputsHandler сохраняет форму. Профиль проверяется сразу, чтобы
// ошибка ввода была видна до расчёта.
func (s *Server) putInputsHandler(c *gin.Context) {
	var req api_models.InputsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	in := toFormInputs(req)
	cc, err := s.estimates.NewContext(in.Profile)
	if err != nil {
		s.respondError(c, "putInputsHandler", err)
		return
	}
	in.Profile = cc.Profile

	sess, err := s.sessions.Update(c.Param("id"), func(sess *session.Session) error {
		sess.SetInputs(in)
		return nil
	})
	if err != nil {
		s.respondError(c, "putInputsHandler", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"inputs":    sess.EffectiveInputs(),
		"fallbacks": cc.Fallbacks,
	})
}

// resetSessionHandler - «초기화»: все ключи сессии удаляются.
func (s *Server) resetSessionHandler(c *gin.Context) {
	sess, err := s.sessions.Update(c.Param("id"), func(sess *session.Session) error {
		sess.Reset()
		return nil
	})
	if err != nil {
		s.respondError(c, "resetSessionHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":     sess.ID,
		"inputs": sess.EffectiveInputs(),
	})
}

func (s *Server) computeStaffingHandler(c *gin.Context) {
	id := c.Param("id")
	sess, err := s.sessions.Get(id)
	if err != nil {
		s.respondError(c, "computeStaffingHandler", err)
		return
	}

	cc, err := s.estimates.NewContext(sess.EffectiveInputs().Profile)
	if err != nil {
		s.respondError(c, "computeStaffingHandler", err)
		return
	}

	rows, err := s.estimates.Staffing(c.Request.Context(), cc)
	if err != nil {
		s.respondError(c, "computeStaffingHandler", err)
		return
	}

	if _, err := s.sessions.UpdateAt(id, sess.Revision, func(sess *session.Session) error {
		sess.SetStaffing(rows)
		return nil
	}); err != nil {
		s.respondError(c, "computeStaffingHandler", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":   cc.Profile,
		"fallbacks": cc.Fallbacks,
		"rows":      rows,
	})
}

func (s *Server) getPeriodsHandler(c *gin.Context) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		s.respondError(c, "getPeriodsHandler", err)
		return
	}
	if sess.Staffing == nil {
		s.respondError(c, "getPeriodsHandler", apierrors.NewPrerequisiteMissingError("сначала рассчитайте трудозатраты"))
		return
	}

	defaults := s.estimates.DefaultPeriods(sess.Staffing)
	c.JSON(http.StatusOK, gin.H{
		"periods": newPeriodRows(sess.Staffing, defaults, sess.Periods),
	})
}

// computeLaborHandler считает затраты на оплату труда. Периоды из запроса
// принимаются только для тарифицируемых строк текущей таблицы трудозатрат.
func (s *Server) computeLaborHandler(c *gin.Context) {
	id := c.Param("id")

	var req api_models.LaborRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
	}

	sess, err := s.sessions.Get(id)
	if err != nil {
		s.respondError(c, "computeLaborHandler", err)
		return
	}
	if sess.Staffing == nil {
		s.respondError(c, "computeLaborHandler", apierrors.NewPrerequisiteMissingError("сначала рассчитайте трудозатраты"))
		return
	}

	periods, err := mergePeriods(sess.Staffing, sess.Periods, req.Periods)
	if err != nil {
		s.respondError(c, "computeLaborHandler", err)
		return
	}

	cc, err := s.estimates.NewContext(sess.EffectiveInputs().Profile)
	if err != nil {
		s.respondError(c, "computeLaborHandler", err)
		return
	}

	breakdown, err := s.estimates.Labor(c.Request.Context(), cc, sess.Staffing, periods)
	if err != nil {
		s.respondError(c, "computeLaborHandler", err)
		return
	}

	if _, err := s.sessions.UpdateAt(id, sess.Revision, func(sess *session.Session) error {
		sess.SetLabor(periods, breakdown)
		return nil
	}); err != nil {
		s.respondError(c, "computeLaborHandler", err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

// mergePeriods накладывает periods из запроса на сохранённые в сессии.
func mergePeriods(rows []models.AdjustedStaffingRow, stored, requested map[int]int) (map[int]int, error) {
	billable := make(map[int]bool, len(rows))
	for _, r := range rows {
		if r.Billable() {
			billable[r.RowID] = true
		}
	}

	out := make(map[int]int, len(stored)+len(requested))
	for id, p := range stored {
		out[id] = p
	}
	for id, p := range requested {
		if !billable[id] {
			return nil, apierrors.NewValidationError("строка %d отсутствует в таблице трудозатрат", id)
		}
		out[id] = p
	}
	return out, nil
}

// computeEstimateHandler считает каскад накруток. Ставки из запроса
// сохраняются в форме сессии; confirm фиксирует сумму договора.
func (s *Server) computeEstimateHandler(c *gin.Context) {
	id := c.Param("id")

	var req api_models.EstimateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
	}

	sess, err := s.sessions.Get(id)
	if err != nil {
		s.respondError(c, "computeEstimateHandler", err)
		return
	}
	if sess.Labor == nil {
		s.respondError(c, "computeEstimateHandler", apierrors.NewPrerequisiteMissingError("сначала рассчитайте затраты на оплату труда"))
		return
	}

	in := sess.EffectiveInputs()
	in.Cascade = toCascade(req.Cascade, in.Cascade)

	cc, err := s.estimates.NewContext(in.Profile)
	if err != nil {
		s.respondError(c, "computeEstimateHandler", err)
		return
	}

	est, err := s.estimates.Cascade(cc, sess.Labor.TotalDirectLabor, in.Cascade)
	if err != nil {
		s.respondError(c, "computeEstimateHandler", err)
		return
	}

	updated, err := s.sessions.UpdateAt(id, sess.Revision, func(sess *session.Session) error {
		if sess.Inputs != nil {
			sess.Inputs.Cascade = in.Cascade
		} else {
			stored := in
			sess.Inputs = &stored
		}
		sess.SetEstimate(est)
		if req.Confirm {
			sess.Confirm()
		}
		return nil
	})
	if err != nil {
		s.respondError(c, "computeEstimateHandler", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"estimate":  est,
		"confirmed": updated.ConfirmedAmount != nil,
	})
}

package server

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/zhukovvlad/designfee-go/cmd/internal/api_models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/apierrors"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/cascade"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/export"
	"github.com/zhukovvlad/designfee-go/cmd/internal/util"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// getCoverHandler - сводка «갑지». До подтверждения показывается текущая смета.
func (s *Server) getCoverHandler(c *gin.Context) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		s.respondError(c, "getCoverHandler", err)
		return
	}
	if sess.Estimate == nil {
		s.respondError(c, "getCoverHandler", apierrors.NewPrerequisiteMissingError("сначала рассчитайте смету"))
		return
	}

	amount := sess.Estimate.ContractAmount
	if sess.ConfirmedAmount != nil {
		amount = *sess.ConfirmedAmount
	}
	in := sess.EffectiveInputs()
	cost := cascade.ServiceCost(amount)

	c.JSON(http.StatusOK, api_models.CoverResponse{
		ProjectName:     in.ProjectName,
		Agency:          in.Agency,
		IssueDate:       s.now().Format("2006-01-02"),
		ContractAmount:  amount,
		ServiceCost:     cost,
		ServiceCostText: util.FormatWon(cost),
		Confirmed:       sess.ConfirmedAmount != nil,
	})
}

// exportSessionHandler выгружает книгу. Доступно только после подтверждения
// ненулевой суммы договора.
func (s *Server) exportSessionHandler(c *gin.Context) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		s.respondError(c, "exportSessionHandler", err)
		return
	}
	if sess.ConfirmedAmount == nil || *sess.ConfirmedAmount <= 0 || sess.Estimate == nil || sess.Labor == nil {
		s.respondError(c, "exportSessionHandler",
			apierrors.NewPrerequisiteMissingError("сначала подтвердите расчёт (산출 완료)"))
		return
	}

	wages, insurance, err := s.fetchReferenceTables(c)
	if err != nil {
		s.respondError(c, "exportSessionHandler", err)
		return
	}

	in := sess.EffectiveInputs()
	doc := export.Document{
		Metadata: export.Metadata{
			ProjectName: in.ProjectName,
			Agency:      in.Agency,
			IssueDate:   s.now(),
		},
		Estimate:  *sess.Estimate,
		Labor:     *sess.Labor,
		Staffing:  sess.Staffing,
		Wages:     wages,
		Insurance: insurance,
	}
	s.writeWorkbook(c, "exportSessionHandler", doc)
}

// statelessEstimateHandler выполняет весь конвейер для одного запроса.
// С ?format=xlsx возвращается книга вместо JSON.
func (s *Server) statelessEstimateHandler(c *gin.Context) {
	var req api_models.StatelessEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	res, err := s.estimates.Run(
		c.Request.Context(),
		toProfile(req.Profile),
		req.Periods,
		toCascade(req.Cascade, models.DefaultCostCascadeInputs()),
	)
	if err != nil {
		s.respondError(c, "statelessEstimateHandler", err)
		return
	}

	if c.Query("format") != "xlsx" {
		c.JSON(http.StatusOK, res)
		return
	}

	s.writeWorkbook(c, "statelessEstimateHandler", export.Document{
		Metadata: export.Metadata{
			ProjectName: req.ProjectName,
			Agency:      req.Agency,
			IssueDate:   s.now(),
		},
		Estimate:  res.Estimate,
		Labor:     res.Labor,
		Staffing:  res.Staffing,
		Wages:     res.Wages,
		Insurance: res.Insurance,
	})
}

// fetchReferenceTables параллельно загружает таблицы для листов «노임단가» и «손해보험요율».
func (s *Server) fetchReferenceTables(c *gin.Context) (models.WageTable, models.InsuranceTable, error) {
	var (
		wages     models.WageTable
		insurance models.InsuranceTable
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		wages, err = s.rates.FetchWageTable(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		insurance, err = s.rates.FetchInsuranceRates(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.WageTable{}, models.InsuranceTable{}, err
	}
	return wages, insurance, nil
}

func (s *Server) writeWorkbook(c *gin.Context, handler string, doc export.Document) {
	data, err := s.assembler.Assemble(doc)
	if err != nil {
		s.respondError(c, handler, err)
		return
	}

	name := export.FileName(doc.Metadata.ProjectName)
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(name))
	c.Data(http.StatusOK, xlsxContentType, data)
}

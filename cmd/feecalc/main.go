// Команда feecalc рассчитывает стоимость проектных услуг без HTTP-сервера
// и сохраняет книгу «갑지». В терминале недостающие значения запрашиваются
// интерактивно, иначе берутся из флагов.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/zhukovvlad/designfee-go/cmd/internal/config"
	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/estimate"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/export"
	"github.com/zhukovvlad/designfee-go/cmd/internal/util"
	"github.com/zhukovvlad/designfee-go/cmd/pkg/logging"
)

func main() {
	logger := logging.GetLogger()
	logger.Info("Design Fee Calculator")

	if err := godotenv.Load(); err != nil {
		logger.Warnf("Warning: error loading .env file: %v", err)
	}

	in := defaultInputs()
	configPath := flag.String("config", "./cmd/config/config.yml", "путь к config.yml")
	outDir := flag.String("out", ".", "каталог для книги")
	bindFlags(flag.CommandLine, &in)
	flag.Parse()

	if term.IsTerminal(int(os.Stdin.Fd())) {
		if err := prompt(bufio.NewReader(os.Stdin), os.Stdout, &in); err != nil {
			logger.Fatalf("failed to read inputs: %v", err)
		}
	}

	cfg, err := config.ReadConfig(*configPath)
	if err != nil {
		logger.Fatalf("error reading config: %v", err)
	}

	svc, _ := estimate.NewFromConfig(cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := svc.Run(ctx, in.profile(), nil, in.Cascade)
	if err != nil {
		logger.Fatalf("calculation failed: %v", err)
	}

	data, err := export.NewAssembler(cfg.Export.TemplatePath, logger).Assemble(export.Document{
		Metadata: export.Metadata{
			ProjectName: in.ProjectName,
			Agency:      in.Agency,
			IssueDate:   time.Now(),
		},
		Estimate:  res.Estimate,
		Labor:     res.Labor,
		Staffing:  res.Staffing,
		Wages:     res.Wages,
		Insurance: res.Insurance,
	})
	if err != nil {
		logger.Fatalf("export failed: %v", err)
	}

	path := filepath.Join(*outDir, export.FileName(in.ProjectName))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Fatalf("failed to write %s: %v", path, err)
	}

	for _, f := range res.Fallbacks {
		logger.Warnf("  заменено: %s", f)
	}
	logger.Infof("✓ Расчёт выполнен")
	logger.Infof("  Прямые затраты на оплату труда: %s", util.FormatAmount(res.Labor.TotalDirectLabor))
	logger.Infof("  Сумма договора: %s", util.FormatAmount(res.Estimate.ContractAmount))
	logger.Infof("  Стоимость услуг: %s", util.FormatWon(res.ServiceCost))
	logger.Infof("  Книга: %s", path)
}

// cliInputs - значения, которые вводятся флагами или в терминале.
type cliInputs struct {
	ProjectName   string
	Agency        string
	Category      string
	Phase         string
	SiteCharacter string
	Difficulty    string
	Area          float64
	Reuse         bool
	Cascade       models.CostCascadeInputs
}

func defaultInputs() cliInputs {
	return cliInputs{
		ProjectName:   "용역",
		Category:      string(models.CategoryLandscape),
		Phase:         string(models.PhaseBasic),
		SiteCharacter: string(models.SiteUrbanPark),
		Difficulty:    string(models.DifficultyNormal),
		Area:          100,
		Cascade:       models.DefaultCostCascadeInputs(),
	}
}

func bindFlags(fs *flag.FlagSet, in *cliInputs) {
	fs.StringVar(&in.ProjectName, "project", in.ProjectName, "용역명")
	fs.StringVar(&in.Agency, "agency", in.Agency, "발주처")
	fs.StringVar(&in.Category, "category", in.Category, "вид услуг (조경 | 환경영향평가)")
	fs.StringVar(&in.Phase, "phase", in.Phase, "стадия проектирования")
	fs.StringVar(&in.SiteCharacter, "site", in.SiteCharacter, "характер участка")
	fs.StringVar(&in.Difficulty, "difficulty", in.Difficulty, "сложность")
	fs.Float64Var(&in.Area, "area", in.Area, "площадь, м²")
	fs.BoolVar(&in.Reuse, "reuse", in.Reuse, "использование результатов предыдущей стадии")
	fs.Float64Var(&in.Cascade.OverheadRatePercent, "overhead", in.Cascade.OverheadRatePercent, "제경비, %")
	fs.Float64Var(&in.Cascade.DirectExpenseAmount, "expense", in.Cascade.DirectExpenseAmount, "직접경비, 원")
	fs.Float64Var(&in.Cascade.TechnicalFeeRatePercent, "techfee", in.Cascade.TechnicalFeeRatePercent, "기술료, %")
	fs.Float64Var(&in.Cascade.InsuranceRatePercent, "insurance", in.Cascade.InsuranceRatePercent, "손해공제비, %")
	fs.Float64Var(&in.Cascade.VATRatePercent, "vat", in.Cascade.VATRatePercent, "부가가치세, %")
}

func (in cliInputs) profile() models.ServiceTypeProfile {
	return models.ServiceTypeProfile{
		Category:        models.ServiceCategory(in.Category),
		Phase:           models.DesignPhase(in.Phase),
		SiteCharacter:   models.SiteCharacter(in.SiteCharacter),
		Difficulty:      models.Difficulty(in.Difficulty),
		Area:            in.Area,
		PriorPhaseReuse: in.Reuse,
	}
}

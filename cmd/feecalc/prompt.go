package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zhukovvlad/designfee-go/cmd/internal/util"
)

// prompt запрашивает значения по очереди. Пустой ввод оставляет текущее
// значение (показано в скобках).
func prompt(r *bufio.Reader, w io.Writer, in *cliInputs) error {
	text := []struct {
		label string
		dst   *string
	}{
		{"용역명", &in.ProjectName},
		{"발주처", &in.Agency},
		{"업무분야 (조경 | 환경영향평가)", &in.Category},
		{"설계단계", &in.Phase},
		{"대상지 성격", &in.SiteCharacter},
		{"난이도", &in.Difficulty},
	}
	for _, f := range text {
		v, err := ask(r, w, f.label, *f.dst)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	numbers := []struct {
		label string
		dst   *float64
	}{
		{"면적 (m²)", &in.Area},
		{"제경비 (%)", &in.Cascade.OverheadRatePercent},
		{"직접경비 (원)", &in.Cascade.DirectExpenseAmount},
		{"기술료 (%)", &in.Cascade.TechnicalFeeRatePercent},
		{"손해공제비 (%)", &in.Cascade.InsuranceRatePercent},
		{"부가가치세 (%)", &in.Cascade.VATRatePercent},
	}
	for _, f := range numbers {
		v, err := ask(r, w, f.label, util.FormatPlain(*f.dst))
		if err != nil {
			return err
		}
		n, ok := util.ParseNumber(v)
		if !ok {
			return fmt.Errorf("%s: не число: %q", f.label, v)
		}
		*f.dst = n
	}

	v, err := ask(r, w, "이전 단계 성과 활용 (y/n)", yesNo(in.Reuse))
	if err != nil {
		return err
	}
	reuse, err := parseYesNo(v)
	if err != nil {
		return err
	}
	in.Reuse = reuse
	return nil
}

func ask(r *bufio.Reader, w io.Writer, label, current string) (string, error) {
	fmt.Fprintf(w, "%s [%s]: ", label, current)
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return current, nil
	}
	return line, nil
}

func yesNo(v bool) string {
	if v {
		return "y"
	}
	return "n"
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "예":
		return true, nil
	case "n", "no", "아니오":
		return false, nil
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b, nil
	}
	return false, fmt.Errorf("ожидается y или n, получено: %q", s)
}

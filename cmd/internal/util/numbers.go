package util

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber приводит «числовой» текст из CSV к float64:
// удаляет разделители тысяч, пробелы и суффикс валюты «원».
// ok=false для пустых и нечисловых значений, в том числе NaN и Inf.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "원")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatPlain печатает число без лишних нулей («2», «0.35»).
func FormatPlain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

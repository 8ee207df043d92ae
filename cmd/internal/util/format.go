package util

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var koPrinter = message.NewPrinter(language.Korean)

// FormatWon форматирует сумму как «123,456,000 원».
func FormatWon(v float64) string {
	return koPrinter.Sprintf("%.0f 원", v)
}

// FormatAmount - разделители тысяч и 2 знака («1,234.50»), как в таблицах формы.
func FormatAmount(v float64) string {
	return koPrinter.Sprintf("%.2f", v)
}

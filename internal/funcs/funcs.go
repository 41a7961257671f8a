package funcs

import (
	"text/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var TemplateFuncs = template.FuncMap{
	"formatTime":   formatTime,
	"formatAmount": FormatAmount,
}

var printer = message.NewPrinter(language.English)

func formatTime(format string, t time.Time) string {
	return t.Format(format)
}

// FormatAmount renders a rupee amount with digit grouping for emails
// and other human-facing surfaces.
func FormatAmount(amount float64) string {
	return printer.Sprintf("₹%.2f", amount)
}

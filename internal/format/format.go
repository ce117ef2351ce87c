// Package format renders monetary values, dates and risk levels for the
// dashboard. All functions are pure and total: malformed input degrades to
// a placeholder or the raw value, never an error.
package format

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/amlwatch/dashboard/internal/domain"
)

// Risk palette, keyed by upper-cased level.
const (
	colorRiskLow      = "#4CAF50"
	colorRiskMedium   = "#F9BD20"
	colorRiskHigh     = "#FF9800"
	colorRiskCritical = "#F44336"
	colorNeutral      = "#878787"
)

var riskColors = map[domain.RiskLevel]string{
	domain.RiskLow:      colorRiskLow,
	domain.RiskMedium:   colorRiskMedium,
	domain.RiskHigh:     colorRiskHigh,
	domain.RiskCritical: colorRiskCritical,
}

var printer = message.NewPrinter(language.English)

// Currency renders an amount with thousands separators and the currency's
// standard number of decimals. An empty or unknown ISO code falls back to EUR.
func Currency(amount float64, code string) string {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		unit = currency.EUR
	}
	return printer.Sprintf("%v", currency.Symbol(unit.Amount(amount)))
}

// Date renders an ISO-8601 date as "02 Jan 2006". Empty input renders as
// "-"; an unparsable date is returned verbatim so the operator still sees
// the stored value.
func Date(iso string) string {
	if iso == "" {
		return "-"
	}
	t := domain.Transaction{Date: iso}
	when, ok := t.When()
	if !ok {
		return iso
	}
	return when.Format("02 Jan 2006")
}

// RiskColor maps a risk level to its display colour. Matching is
// case-insensitive; unknown levels get the neutral grey.
func RiskColor(level string) string {
	if c, ok := riskColors[domain.RiskLevel(strings.ToUpper(level))]; ok {
		return c
	}
	return colorNeutral
}

// SeverityColor maps an alert severity to the same palette. Severities only
// go up to HIGH.
func SeverityColor(severity domain.AlertSeverity) string {
	switch severity {
	case domain.SeverityLow:
		return colorRiskLow
	case domain.SeverityMedium:
		return colorRiskMedium
	case domain.SeverityHigh:
		return colorRiskHigh
	}
	return colorNeutral
}

// Abbrev shortens an axis value: 12000 -> "12k", values under a thousand
// keep their integer form.
func Abbrev(v float64) string {
	if v >= 1000 {
		return fmt.Sprintf("%.0fk", v/1000)
	}
	return fmt.Sprintf("%g", v)
}


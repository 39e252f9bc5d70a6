package ui

import (
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/worksdev/portal/internal/billing"
)

func TestFormatterWithColor(t *testing.T) {
	os.Unsetenv("NO_COLOR")
	original := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = original }()

	result := Command.Sprint("portal keys init")
	if strings.Contains(result, "`") {
		t.Errorf("Command.Sprint() with color = %q, want no backticks", result)
	}
	if !strings.Contains(result, "\x1b[") {
		t.Errorf("Command.Sprint() with color = %q, want ANSI codes", result)
	}
}

func TestFormatterWithNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		name      string
		formatter Formatter
		input     string
		want      string
	}{
		{"Command", Command, "portal keys init", "`portal keys init`"},
		{"Flag", Flag, "--force", "--force"},
		{"Success", Success, "✓", "✓"},
		{"Error", Error, "✗", "✗"},
		{"Highlight", Highlight, "ana@example.com", "'ana@example.com'"},
		{"Muted", Muted, "sin descuento", "(sin descuento)"},
		{"Amount", Amount, "$10.00", "$10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.formatter.Sprint(tt.input); got != tt.want {
				t.Errorf("Sprint(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	if got := Command.Sprintf("portal orders breakdown %d", 42); got != "`portal orders breakdown 42`" {
		t.Errorf("Sprintf() = %q", got)
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents billing.Cents
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{104400, "$1,044.00"},
		{-300, "-$3.00"},
		{123456789, "$1,234,567.89"},
		{100000, "$1,000.00"},
	}

	for _, tt := range tests {
		if got := FormatCents(tt.cents); got != tt.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoneyNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	if got := Money(-300); got != "-$3.00" {
		t.Errorf("Money(-300) = %q", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(decimal.RequireFromString("12.5")); got != "12.5%" {
		t.Errorf("Percent(12.5) = %q", got)
	}
	if got := Percent(decimal.NewFromInt(10)); got != "10%" {
		t.Errorf("Percent(10) = %q", got)
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"abc", "***"},
		{"K9#xv2", "K9#x**"},
		{"contraseña", "cont******"},
	}

	for _, tt := range tests {
		if got := Mask(tt.in); got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnsureNewline(t *testing.T) {
	if got := EnsureNewline("hola"); got != "hola\n" {
		t.Errorf("EnsureNewline() = %q", got)
	}
	if got := EnsureNewline("hola\n"); got != "hola\n" {
		t.Errorf("EnsureNewline() = %q", got)
	}
}

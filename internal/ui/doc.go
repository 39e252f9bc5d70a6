// Package ui formats portal CLI output.
//
// Formatters render semantic content (commands, amounts, user values,
// status markers) with color when the terminal supports it and with plain
// text decorations when it does not.
//
//	ui.Command.Sprint("portal keys init")   // `portal keys init` without color
//	ui.Highlight.Sprint("ana@example.com")  // 'ana@example.com' without color
//	ui.Money(billing.Cents(104400))         // $1,044.00, red when negative
//	ui.Mask("K9#xv2-deploy")                // K9#x*********
//
// Colors are disabled when NO_COLOR is set or the terminal cannot show
// them (TERM=dumb, not a TTY).
package ui

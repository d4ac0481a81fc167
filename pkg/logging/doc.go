// Package logging provides slog.Logger construction for apachemgr.
//
// All components take a *slog.Logger and default to Nop() when none is
// provided, so library code never writes to stderr unless asked to.
package logging

package mcp

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/apachemgr/apachemgr/pkg/apache"
)

// SiteManager is the site inspection and toggling surface the tools and
// resource catalog run against. *apache.Manager is the production
// implementation.
type SiteManager interface {
	SitesAvailableDir() string
	SitesEnabledDir() string
	ListAvailable() []string
	ListEnabled() []string
	IsEnabled(site string) bool
	SiteExists(site string) bool
	ReadConfig(site string) (string, bool)
	ConfigPath(site string) string
	EnabledPath(site string) string
	Enable(ctx context.Context, site string) apache.Result
	Disable(ctx context.Context, site string) apache.Result
	TestConfig(ctx context.Context) apache.Result
	Reload(ctx context.Context) apache.Result
	Restart(ctx context.Context) apache.Result
}

// siteTools holds the handlers behind the Apache management tools.
type siteTools struct {
	mgr SiteManager
}

func (t *siteTools) listAvailableSites(_ context.Context, _ map[string]interface{}) (*ToolResult, error) {
	sites := t.mgr.ListAvailable()
	if len(sites) == 0 {
		return ToolResultText("No available sites found in " + t.mgr.SitesAvailableDir()), nil
	}

	var b strings.Builder
	b.WriteString("Available Apache Sites:\n\n")
	for _, site := range sites {
		status := "✗ disabled"
		if t.mgr.IsEnabled(site) {
			status = "✓ ENABLED"
		}
		fmt.Fprintf(&b, "  %s - %s\n", status, site)
	}
	return ToolResultText(b.String()), nil
}

func (t *siteTools) listEnabledSites(_ context.Context, _ map[string]interface{}) (*ToolResult, error) {
	sites := t.mgr.ListEnabled()
	if len(sites) == 0 {
		return ToolResultText("No enabled sites found in " + t.mgr.SitesEnabledDir()), nil
	}

	var b strings.Builder
	b.WriteString("Enabled Apache Sites:\n\n")
	for _, site := range sites {
		fmt.Fprintf(&b, "  ✓ %s\n", site)
	}
	return ToolResultText(b.String()), nil
}

func (t *siteTools) getSiteStatus(_ context.Context, args map[string]interface{}) (*ToolResult, error) {
	siteName := getString(args, "site_name", "")

	if !slices.Contains(t.mgr.ListAvailable(), siteName) {
		return ToolResultErrorf("Error: Site '%s' not found in sites-available", siteName), nil
	}

	enabled := t.mgr.IsEnabled(siteName)
	config, _ := t.mgr.ReadConfig(siteName)

	status := "DISABLED"
	if enabled {
		status = "ENABLED"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Site: %s\n", siteName)
	fmt.Fprintf(&b, "Status: %s\n", status)
	b.WriteString("Available: Yes\n")
	fmt.Fprintf(&b, "Config Path: %s\n", t.mgr.ConfigPath(siteName))
	if enabled {
		fmt.Fprintf(&b, "Enabled Path: %s\n", t.mgr.EnabledPath(siteName))
	}
	fmt.Fprintf(&b, "\nConfiguration:\n%s\n%s\n", strings.Repeat("=", 60), config)

	return ToolResultText(b.String()), nil
}

func (t *siteTools) enableSite(ctx context.Context, args map[string]interface{}) (*ToolResult, error) {
	siteName := getString(args, "site_name", "")
	reload := getBool(args, "reload", true)

	if !t.mgr.SiteExists(siteName) {
		return ToolResultErrorf("Error: Site '%s' not found in sites-available", siteName), nil
	}

	if t.mgr.IsEnabled(siteName) {
		return ToolResultText(fmt.Sprintf("Site '%s' is already enabled", siteName)), nil
	}

	res := t.mgr.Enable(ctx, siteName)
	if !res.Success {
		return ToolResultErrorf("Error enabling site:\n%s", res.Stderr), nil
	}

	result := fmt.Sprintf("Successfully enabled site: %s\n%s\n", siteName, res.Stdout)
	result += t.reloadSuffix(ctx, reload)

	return ToolResultText(result), nil
}

func (t *siteTools) disableSite(ctx context.Context, args map[string]interface{}) (*ToolResult, error) {
	siteName := getString(args, "site_name", "")
	reload := getBool(args, "reload", true)

	if !t.mgr.IsEnabled(siteName) {
		return ToolResultText(fmt.Sprintf("Site '%s' is not enabled", siteName)), nil
	}

	res := t.mgr.Disable(ctx, siteName)
	if !res.Success {
		return ToolResultErrorf("Error disabling site:\n%s", res.Stderr), nil
	}

	result := fmt.Sprintf("Successfully disabled site: %s\n%s\n", siteName, res.Stdout)
	result += t.reloadSuffix(ctx, reload)

	return ToolResultText(result), nil
}

// reloadSuffix runs the post-toggle reload when requested and describes the
// outcome. A failed reload is a warning, not a failure of the toggle itself.
func (t *siteTools) reloadSuffix(ctx context.Context, reload bool) string {
	if !reload {
		return "\nNote: Apache not reloaded. Run 'reload_apache' to apply changes."
	}

	res := t.mgr.Reload(ctx)
	if res.Success {
		return "\nApache configuration reloaded successfully"
	}
	return fmt.Sprintf("\nWarning: Failed to reload Apache:\n%s", res.Stderr)
}

func (t *siteTools) testConfig(ctx context.Context, _ map[string]interface{}) (*ToolResult, error) {
	res := t.mgr.TestConfig(ctx)

	var b strings.Builder
	b.WriteString("Apache Configuration Test:\n\n")
	if res.Success {
		b.WriteString("✓ Syntax OK\n")
	} else {
		b.WriteString("✗ Configuration Error\n")
	}

	if res.Stdout != "" {
		b.WriteString("\nOutput:\n" + res.Stdout)
	}
	if res.Stderr != "" {
		b.WriteString("\nErrors:\n" + res.Stderr)
	}

	return ToolResultText(b.String()), nil
}

func (t *siteTools) reloadApache(ctx context.Context, _ map[string]interface{}) (*ToolResult, error) {
	res := t.mgr.Reload(ctx)
	if !res.Success {
		return ToolResultErrorf("✗ Failed to reload Apache:\n%s", res.Stderr), nil
	}
	return ToolResultText("✓ Apache reloaded successfully"), nil
}

func (t *siteTools) restartApache(ctx context.Context, _ map[string]interface{}) (*ToolResult, error) {
	res := t.mgr.Restart(ctx)
	if !res.Success {
		return ToolResultErrorf("✗ Failed to restart Apache:\n%s", res.Stderr), nil
	}
	return ToolResultText("✓ Apache restarted successfully"), nil
}

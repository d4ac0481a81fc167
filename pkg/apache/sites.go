package apache

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apachemgr/apachemgr/pkg/logging"
)

// Manager inspects and toggles Apache site configurations. Listings are read
// from the live directories on every call; nothing is cached.
type Manager struct {
	sitesAvailable string
	sitesEnabled   string
	runner         Runner
	log            *slog.Logger
}

// NewManager creates a Manager over the given sites-available and
// sites-enabled directories.
func NewManager(sitesAvailable, sitesEnabled string, runner Runner, log *slog.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{
		sitesAvailable: sitesAvailable,
		sitesEnabled:   sitesEnabled,
		runner:         runner,
		log:            log,
	}
}

// SitesAvailableDir returns the configured sites-available directory.
func (m *Manager) SitesAvailableDir() string { return m.sitesAvailable }

// SitesEnabledDir returns the configured sites-enabled directory.
func (m *Manager) SitesEnabledDir() string { return m.sitesEnabled }

func listSites(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var sites []string
	for _, e := range entries {
		// Enabled sites are symlinks into sites-available; both regular
		// files and symlinks count.
		if e.IsDir() {
			continue
		}
		if e.Name() == "README" {
			continue
		}
		sites = append(sites, e.Name())
	}
	sort.Strings(sites)
	return sites
}

// ListAvailable returns the sorted site file names in sites-available.
// A missing directory yields an empty list.
func (m *Manager) ListAvailable() []string {
	return listSites(m.sitesAvailable)
}

// ListEnabled returns the sorted site file names in sites-enabled.
func (m *Manager) ListEnabled() []string {
	return listSites(m.sitesEnabled)
}

// IsEnabled reports whether the named site has an entry in sites-enabled.
func (m *Manager) IsEnabled(site string) bool {
	_, err := os.Lstat(filepath.Join(m.sitesEnabled, site))
	return err == nil
}

// SiteExists reports whether the named site is present in sites-available.
// The name matches with or without a .conf suffix, mirroring a2ensite.
func (m *Manager) SiteExists(site string) bool {
	base := strings.TrimSuffix(site, ".conf")
	for _, s := range m.ListAvailable() {
		if s == site || strings.TrimSuffix(s, ".conf") == base {
			return true
		}
	}
	return false
}

// ConfigPath returns the path of the site file in sites-available.
func (m *Manager) ConfigPath(site string) string {
	return filepath.Join(m.sitesAvailable, site)
}

// EnabledPath returns the path of the site entry in sites-enabled.
func (m *Manager) EnabledPath(site string) string {
	return filepath.Join(m.sitesEnabled, site)
}

// ReadConfig reads the site configuration from sites-available. The second
// return value reports whether the file exists; an existing empty file reads
// as an empty string with found true.
func (m *Manager) ReadConfig(site string) (string, bool) {
	data, err := os.ReadFile(m.ConfigPath(site))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Enable runs a2ensite for the named site.
func (m *Manager) Enable(ctx context.Context, site string) Result {
	m.log.Info("enabling site", "site", site)
	return m.runner.Run(ctx, "sudo", "a2ensite", site)
}

// Disable runs a2dissite for the named site.
func (m *Manager) Disable(ctx context.Context, site string) Result {
	m.log.Info("disabling site", "site", site)
	return m.runner.Run(ctx, "sudo", "a2dissite", site)
}

// TestConfig runs apache2ctl configtest.
func (m *Manager) TestConfig(ctx context.Context) Result {
	return m.runner.Run(ctx, "sudo", "apache2ctl", "configtest")
}

// Reload reloads Apache without dropping connections.
func (m *Manager) Reload(ctx context.Context) Result {
	m.log.Info("reloading apache")
	return m.runner.Run(ctx, "sudo", "service", "apache2", "reload")
}

// Restart restarts Apache, dropping all connections.
func (m *Manager) Restart(ctx context.Context) Result {
	m.log.Info("restarting apache")
	return m.runner.Run(ctx, "sudo", "service", "apache2", "restart")
}

package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/apachemgr/apachemgr/pkg/httputil"
)

// SiteInfo is a summary entry in the available-sites listing.
type SiteInfo struct {
	Name      string `json:"name"`
	Enabled   bool   `json:"enabled"`
	Available bool   `json:"available"`
}

// SiteDetail is the full description of one site.
type SiteDetail struct {
	Name          string  `json:"name"`
	Enabled       bool    `json:"enabled"`
	Available     bool    `json:"available"`
	ConfigPath    string  `json:"config_path"`
	EnabledPath   *string `json:"enabled_path"`
	Configuration string  `json:"configuration"`
}

// SiteAction is the request body for enable/disable operations.
// Reload defaults to true when omitted.
type SiteAction struct {
	SiteName string `json:"site_name"`
	Reload   *bool  `json:"reload"`
}

// APIResponse is the generic mutation response envelope.
type APIResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// ConfigTestResponse is the response for GET /config/test.
type ConfigTestResponse struct {
	Success  bool   `json:"success"`
	SyntaxOK bool   `json:"syntax_ok"`
	Output   string `json:"output"`
	Errors   string `json:"errors"`
}

// handleListAvailable handles GET /sites/available.
func (a *API) handleListAvailable(w http.ResponseWriter, _ *http.Request) {
	sites := a.mgr.ListAvailable()
	result := make([]SiteInfo, 0, len(sites))

	for _, site := range sites {
		result = append(result, SiteInfo{
			Name:      site,
			Enabled:   a.mgr.IsEnabled(site),
			Available: true,
		})
	}

	httputil.WriteOK(w, result)
}

// handleListEnabled handles GET /sites/enabled.
func (a *API) handleListEnabled(w http.ResponseWriter, _ *http.Request) {
	sites := a.mgr.ListEnabled()
	if sites == nil {
		sites = []string{}
	}
	httputil.WriteOK(w, sites)
}

// handleSiteDetail handles GET /sites/{site}.
func (a *API) handleSiteDetail(w http.ResponseWriter, r *http.Request) {
	site := r.PathValue("site")

	found := false
	for _, s := range a.mgr.ListAvailable() {
		if s == site {
			found = true
			break
		}
	}
	if !found {
		httputil.WriteNotFound(w, "Site not found",
			fmt.Sprintf("Site '%s' not found in sites-available", site))
		return
	}

	enabled := a.mgr.IsEnabled(site)
	config, _ := a.mgr.ReadConfig(site)

	detail := SiteDetail{
		Name:          site,
		Enabled:       enabled,
		Available:     true,
		ConfigPath:    a.mgr.ConfigPath(site),
		Configuration: config,
	}
	if enabled {
		path := a.mgr.EnabledPath(site)
		detail.EnabledPath = &path
	}

	httputil.WriteOK(w, detail)
}

// decodeSiteAction parses and validates the enable/disable request body.
func decodeSiteAction(w http.ResponseWriter, r *http.Request) (*SiteAction, bool) {
	var action SiteAction
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body", err.Error())
		return nil, false
	}
	if action.SiteName == "" {
		httputil.WriteBadRequest(w, "Invalid request body", "site_name is required")
		return nil, false
	}
	return &action, true
}

func (action *SiteAction) wantReload() bool {
	return action.Reload == nil || *action.Reload
}

// reloadInto runs the post-toggle reload and folds the outcome into the
// response message and data.
func (a *API) reloadInto(ctx context.Context, message string, data map[string]interface{}) string {
	res := a.mgr.Reload(ctx)
	if res.Success {
		data["reloaded"] = true
		return message + "\nApache configuration reloaded successfully"
	}
	data["reloaded"] = false
	data["reload_error"] = res.Stderr
	return message + fmt.Sprintf("\nWarning: Failed to reload Apache: %s", res.Stderr)
}

// handleEnableSite handles POST /sites/enable.
func (a *API) handleEnableSite(w http.ResponseWriter, r *http.Request) {
	action, ok := decodeSiteAction(w, r)
	if !ok {
		return
	}

	if !a.mgr.SiteExists(action.SiteName) {
		httputil.WriteNotFound(w, "Site not found",
			fmt.Sprintf("Site '%s' not found in sites-available", action.SiteName))
		return
	}

	if a.mgr.IsEnabled(action.SiteName) {
		httputil.WriteOK(w, APIResponse{
			Success: true,
			Message: fmt.Sprintf("Site '%s' is already enabled", action.SiteName),
			Data:    map[string]interface{}{"already_enabled": true},
		})
		return
	}

	res := a.mgr.Enable(r.Context(), action.SiteName)
	if !res.Success {
		httputil.WriteInternalError(w, "Error enabling site", res.Stderr)
		return
	}

	message := "Successfully enabled site: " + action.SiteName
	data := map[string]interface{}{"stdout": res.Stdout}

	if action.wantReload() {
		message = a.reloadInto(r.Context(), message, data)
	} else {
		message += "\nApache not reloaded. Call /apache/reload to apply changes."
		data["reloaded"] = false
	}

	httputil.WriteOK(w, APIResponse{Success: true, Message: message, Data: data})
}

// handleDisableSite handles POST /sites/disable.
func (a *API) handleDisableSite(w http.ResponseWriter, r *http.Request) {
	action, ok := decodeSiteAction(w, r)
	if !ok {
		return
	}

	if !a.mgr.IsEnabled(action.SiteName) {
		httputil.WriteOK(w, APIResponse{
			Success: true,
			Message: fmt.Sprintf("Site '%s' is not enabled", action.SiteName),
			Data:    map[string]interface{}{"already_disabled": true},
		})
		return
	}

	res := a.mgr.Disable(r.Context(), action.SiteName)
	if !res.Success {
		httputil.WriteInternalError(w, "Error disabling site", res.Stderr)
		return
	}

	message := "Successfully disabled site: " + action.SiteName
	data := map[string]interface{}{"stdout": res.Stdout}

	if action.wantReload() {
		message = a.reloadInto(r.Context(), message, data)
	} else {
		message += "\nApache not reloaded. Call /apache/reload to apply changes."
		data["reloaded"] = false
	}

	httputil.WriteOK(w, APIResponse{Success: true, Message: message, Data: data})
}

// handleTestConfig handles GET /config/test.
func (a *API) handleTestConfig(w http.ResponseWriter, r *http.Request) {
	res := a.mgr.TestConfig(r.Context())

	httputil.WriteOK(w, ConfigTestResponse{
		Success:  res.Success,
		SyntaxOK: res.Success,
		Output:   res.Stdout,
		Errors:   res.Stderr,
	})
}

// handleReload handles POST /apache/reload.
func (a *API) handleReload(w http.ResponseWriter, r *http.Request) {
	res := a.mgr.Reload(r.Context())
	if !res.Success {
		httputil.WriteInternalError(w, "Failed to reload Apache", res.Stderr)
		return
	}

	httputil.WriteOK(w, APIResponse{
		Success: true,
		Message: "Apache reloaded successfully",
		Data:    map[string]interface{}{"stdout": res.Stdout},
	})
}

// handleRestart handles POST /apache/restart.
func (a *API) handleRestart(w http.ResponseWriter, r *http.Request) {
	res := a.mgr.Restart(r.Context())
	if !res.Success {
		httputil.WriteInternalError(w, "Failed to restart Apache", res.Stderr)
		return
	}

	httputil.WriteOK(w, APIResponse{
		Success: true,
		Message: "Apache restarted successfully",
		Data:    map[string]interface{}{"stdout": res.Stdout},
	})
}

package mcp

import (
	"fmt"
	"strings"
)

// ResourceURIPrefix is the URI scheme prefix for site configuration resources.
const ResourceURIPrefix = "apache://sites-available/"

// ResourceProvider exposes Apache site configurations as MCP resources.
// Listings are regenerated from the live directory on every call.
type ResourceProvider struct {
	mgr SiteManager
}

// NewResourceProvider creates a resource provider over the site manager.
func NewResourceProvider(mgr SiteManager) *ResourceProvider {
	return &ResourceProvider{mgr: mgr}
}

// List returns one resource definition per available site, sorted by name.
func (p *ResourceProvider) List() []ResourceDefinition {
	sites := p.mgr.ListAvailable()
	resources := make([]ResourceDefinition, 0, len(sites))

	for _, site := range sites {
		status := "disabled"
		if p.mgr.IsEnabled(site) {
			status = "enabled"
		}

		resources = append(resources, ResourceDefinition{
			URI:         ResourceURIPrefix + site,
			Name:        fmt.Sprintf("%s (%s)", site, status),
			Description: "Apache site configuration - " + status,
			MimeType:    "text/plain",
		})
	}

	return resources
}

// Read returns the contents of a site configuration resource. URIs outside
// the apache:// scheme are rejected before the directory is consulted.
func (p *ResourceProvider) Read(uri string) ([]ResourceContent, *JSONRPCError) {
	if !strings.HasPrefix(uri, ResourceURIPrefix) {
		return nil, UnknownResourceError(uri)
	}

	site := strings.TrimPrefix(uri, ResourceURIPrefix)
	config, found := p.mgr.ReadConfig(site)
	if !found {
		return nil, ResourceNotFoundError(site)
	}

	status := "DISABLED"
	if p.mgr.IsEnabled(site) {
		status = "ENABLED"
	}

	text := fmt.Sprintf("# Apache Site: %s\n# Status: %s\n\n%s", site, status, config)

	return []ResourceContent{
		{
			URI:      uri,
			MimeType: "text/plain",
			Text:     text,
		},
	}, nil
}

package config

import "strings"

// SiteConfig holds request settings for a single host.
type SiteConfig struct {
	// Cookie is an HTTP cookie sent with every request to this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers added to every request.
	// They override the built-in browser headers.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the User-Agent for this site.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File represents the structure of the .sitemapper configuration file.
type File struct {
	// Sites maps hosts (e.g. "example.com" or "example.com:8080") to their
	// settings. Matching is case-insensitive.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to every site unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for host merged over the defaults.
// An entry for the exact host (with port) wins over one for the bare hostname.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := SiteConfig{
		Cookie:    cf.Defaults.Cookie,
		UserAgent: cf.Defaults.UserAgent,
	}
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	site, ok := cf.lookup(host)
	if !ok {
		return result
	}

	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if site.UserAgent != "" {
		result.UserAgent = site.UserAgent
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range site.Headers {
			result.Headers[k] = v
		}
	}
	return result
}

// lookup finds the site entry for host, falling back to the host without port.
func (cf *File) lookup(host string) (SiteConfig, bool) {
	candidates := []string{host}
	if i := strings.LastIndex(host, ":"); i > 0 && !strings.HasSuffix(host, "]") {
		candidates = append(candidates, host[:i])
	}

	for _, want := range candidates {
		for key, site := range cf.Sites {
			if strings.EqualFold(key, want) {
				return site, true
			}
		}
	}
	return SiteConfig{}, false
}

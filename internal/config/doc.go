// Package config provides the crawl configuration, its defaults and
// validation, and the optional .sitemapper file with per-site settings.
package config

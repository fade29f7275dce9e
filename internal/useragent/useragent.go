// Package useragent provides lightweight user-agent classification for
// display caching and automation detection. It is heuristic by design and
// makes no fraud-detection completeness claims.
package useragent

import (
	"regexp"
	"strings"
)

// Classification is the coarse device summary cached on the UserDevice
// aggregate for admin display.
type Classification struct {
	DeviceType  string
	BrowserName string
	OSName      string
}

var botPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)headless`),
	regexp.MustCompile(`(?i)phantomjs`),
	regexp.MustCompile(`(?i)selenium`),
	regexp.MustCompile(`(?i)webdriver`),
	regexp.MustCompile(`(?i)puppeteer`),
	regexp.MustCompile(`(?i)playwright`),
	regexp.MustCompile(`(?i)bot\b`),
	regexp.MustCompile(`(?i)crawler`),
	regexp.MustCompile(`(?i)spider`),
	regexp.MustCompile(`(?i)scraper`),
	regexp.MustCompile(`(?i)python-requests`),
	regexp.MustCompile(`(?i)\bcurl/`),
	regexp.MustCompile(`(?i)\bwget/`),
	regexp.MustCompile(`(?i)go-http-client`),
	regexp.MustCompile(`(?i)java/`),
	regexp.MustCompile(`(?i)okhttp`),
}

// strongBotPatterns indicate direct automation tooling rather than generic
// crawlers and carry the top of the bot weight range.
var strongBotPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)headless`),
	regexp.MustCompile(`(?i)selenium`),
	regexp.MustCompile(`(?i)webdriver`),
	regexp.MustCompile(`(?i)puppeteer`),
	regexp.MustCompile(`(?i)playwright`),
	regexp.MustCompile(`(?i)phantomjs`),
}

// IsBot reports whether the user agent matches a known automation, bot, or
// headless-browser signature. strong is true for direct automation tooling.
func IsBot(userAgent string) (bot bool, strong bool) {
	for _, p := range strongBotPatterns {
		if p.MatchString(userAgent) {
			return true, true
		}
	}
	for _, p := range botPatterns {
		if p.MatchString(userAgent) {
			return true, false
		}
	}
	return false, false
}

// Classify extracts a coarse device/browser/OS summary from a user agent.
func Classify(userAgent string) Classification {
	ua := strings.ToLower(userAgent)

	c := Classification{
		DeviceType:  "desktop",
		BrowserName: "unknown",
		OSName:      "unknown",
	}
	if userAgent == "" {
		c.DeviceType = "unknown"
		return c
	}

	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		c.DeviceType = "tablet"
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "iphone") || strings.Contains(ua, "android"):
		c.DeviceType = "mobile"
	}

	switch {
	case strings.Contains(ua, "edg/") || strings.Contains(ua, "edge/"):
		c.BrowserName = "Edge"
	case strings.Contains(ua, "opr/") || strings.Contains(ua, "opera"):
		c.BrowserName = "Opera"
	case strings.Contains(ua, "firefox/"):
		c.BrowserName = "Firefox"
	case strings.Contains(ua, "chrome/") || strings.Contains(ua, "crios/"):
		c.BrowserName = "Chrome"
	case strings.Contains(ua, "safari/"):
		c.BrowserName = "Safari"
	}

	switch {
	case strings.Contains(ua, "windows"):
		c.OSName = "Windows"
	case strings.Contains(ua, "android"):
		c.OSName = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ios"):
		c.OSName = "iOS"
	case strings.Contains(ua, "mac os") || strings.Contains(ua, "macintosh"):
		c.OSName = "macOS"
	case strings.Contains(ua, "linux"):
		c.OSName = "Linux"
	}

	return c
}

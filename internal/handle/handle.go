// Package handle extracts channel handles from user-supplied profile links.
package handle

import (
	"net/url"
	"regexp"
	"strings"
)

// Platforms with known profile link formats.
const (
	Telegram  = "telegram"
	YouTube   = "youtube"
	TikTok    = "tiktok"
	Instagram = "instagram"
)

type rule struct {
	hosts []string
	// atPath requires the first path segment to start with "@".
	atPath  bool
	pattern *regexp.Regexp
	// skip lists leading path segments that precede the handle.
	skip []string
	// reserved lists first path segments that are never handles.
	reserved map[string]struct{}
}

var rules = map[string]rule{
	Telegram: {
		hosts:    []string{"t.me", "telegram.me", "telegram.dog"},
		pattern:  regexp.MustCompile(`^[A-Za-z0-9_]+$`),
		skip:     []string{"s"},
		reserved: set("joinchat", "addstickers", "share", "proxy", "socks"),
	},
	YouTube: {
		hosts:   []string{"youtube.com", "m.youtube.com"},
		atPath:  true,
		pattern: regexp.MustCompile(`^[A-Za-z0-9_.-]+$`),
	},
	TikTok: {
		hosts:   []string{"tiktok.com", "m.tiktok.com"},
		atPath:  true,
		pattern: regexp.MustCompile(`^[A-Za-z0-9_.]+$`),
	},
	Instagram: {
		hosts:    []string{"instagram.com"},
		pattern:  regexp.MustCompile(`^[A-Za-z0-9_.]+$`),
		reserved: set("p", "reel", "reels", "stories", "explore", "accounts", "tv"),
	},
}

func set(items ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, item := range items {
		out[item] = struct{}{}
	}
	return out
}

// Supported reports whether platform has extraction rules.
func Supported(platform string) bool {
	_, ok := rules[normalizePlatform(platform)]
	return ok
}

// ExtractHandle returns the Telegram handle in input, accepting "@name" or a t.me link.
func ExtractHandle(input string) (string, bool) {
	return Extract(Telegram, input)
}

// Extract returns the handle for platform found in input, without the "@" sigil.
// It reports false for empty input, unknown hosts, malformed links, or links with no handle.
func Extract(platform, input string) (string, bool) {
	r, ok := rules[normalizePlatform(platform)]
	if !ok {
		return "", false
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	if strings.HasPrefix(input, "@") {
		return r.match(strings.TrimPrefix(input, "@"))
	}

	raw := input
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if !r.knownHost(u.Hostname()) {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) > 0 && contains(r.skip, segments[0]) {
		segments = segments[1:]
	}
	if len(segments) == 0 || segments[0] == "" {
		return "", false
	}
	first := segments[0]
	if r.atPath {
		if !strings.HasPrefix(first, "@") {
			return "", false
		}
		first = strings.TrimPrefix(first, "@")
	}
	if _, reserved := r.reserved[strings.ToLower(first)]; reserved {
		return "", false
	}
	return r.match(first)
}

func (r rule) match(candidate string) (string, bool) {
	if candidate == "" || !r.pattern.MatchString(candidate) {
		return "", false
	}
	return candidate, true
}

func (r rule) knownHost(host string) bool {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	return contains(r.hosts, host)
}

func contains(items []string, v string) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}

func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

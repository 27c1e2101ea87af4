package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg plus any problems found.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string, lower bool) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			if lower {
				x = strings.ToLower(x)
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Discovery.Blocklist = trimList(out.Discovery.Blocklist, true)
	out.Contact.Paths = trimList(out.Contact.Paths, false)
	out.Search.Provider = strings.ToLower(strings.TrimSpace(out.Search.Provider))

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	switch out.Search.Provider {
	case "serpapi":
		if strings.TrimSpace(out.Search.Endpoint) == "" {
			res.addErr("search.endpoint is required for provider serpapi")
		}
		if out.Search.APIKey == "" {
			res.addWarn("SERPAPI_KEY is not set; discovery needs it or a key stored in the keychain.")
		}
	case "duckduckgo":
	default:
		res.addErr("search.provider must be serpapi or duckduckgo (got %q)", out.Search.Provider)
	}

	if out.Detection.Threshold <= 0 || out.Detection.Threshold > 1 {
		res.addErr("detection.threshold must be in (0, 1]")
	}

	if len(out.Contact.Paths) == 0 {
		res.addWarn("contact.paths is empty; no contact emails will be found.")
	}
	for i, p := range out.Contact.Paths {
		if !strings.HasPrefix(p, "/") {
			res.addErr("contact.paths[%d] must start with '/' (got %q)", i, p)
		}
	}

	if out.Discovery.DefaultNum < 1 || out.Discovery.DefaultNum > 20 {
		res.addWarn("discovery.default_num %d is outside 1..20 and will be clamped.", out.Discovery.DefaultNum)
	}

	if out.Fetch.TimeoutSeconds < 0 {
		res.addErr("fetch.timeout_seconds must be >= 0")
	}
	if out.Fetch.MaxBodyBytes <= 0 {
		res.addErr("fetch.max_body_bytes must be > 0")
	}

	if out.Store.CheckpointMinutes < 0 {
		res.addErr("store.checkpoint_minutes must be >= 0")
	}

	return out, res
}

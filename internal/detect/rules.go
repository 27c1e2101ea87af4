package detect

import "regexp"

// Rule adds Weight (in hundredths) when Pattern matches the homepage HTML.
type Rule struct {
	Signal  string
	Weight  int
	Pattern *regexp.Regexp
}

const (
	probePath   = "/wp-json"
	probeSignal = "wp-json"
	probeWeight = 50
	maxScore    = 100
)

var DefaultRules = []Rule{
	{Signal: "wp-content", Weight: 40, Pattern: regexp.MustCompile(`(?i)wp-content/`)},
	{Signal: "wp-includes", Weight: 30, Pattern: regexp.MustCompile(`(?i)wp-includes/`)},
	{Signal: "generator", Weight: 20, Pattern: regexp.MustCompile(`(?i)generator["']?[^>]*WordPress`)},
}

func applyRules(html string, rules []Rule) (score int, signals []string) {
	for _, r := range rules {
		if r.Pattern.MatchString(html) {
			score += r.Weight
			signals = append(signals, r.Signal)
		}
	}
	return score, signals
}

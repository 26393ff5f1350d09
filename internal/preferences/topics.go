package preferences

import "strings"

// topicKeywords maps each topic category to the keywords that signal it
// in an issue's title or description. An issue may match zero, one, or
// several topics at once.
var topicKeywords = map[string][]string{
	"backend": {
		"api", "server", "database", "sql", "endpoint", "backend",
		"migration", "queue", "worker", "service",
	},
	"frontend": {
		"ui", "ux", "css", "frontend", "component", "react", "layout",
		"button", "page", "render",
	},
	"infrastructure": {
		"deploy", "deployment", "docker", "kubernetes", "k8s", "terraform",
		"infra", "infrastructure", "ci/cd", "pipeline", "cloud",
	},
	"testing": {
		"test", "tests", "testing", "coverage", "flaky", "qa", "regression",
	},
	"documentation": {
		"docs", "documentation", "readme", "changelog", "guide", "tutorial",
	},
	"performance": {
		"slow", "performance", "latency", "optimize", "optimization",
		"memory", "cpu", "profiling", "cache",
	},
	"security": {
		"security", "vulnerability", "cve", "auth", "authentication",
		"authorization", "xss", "csrf", "injection", "encryption",
	},
}

// DetectTopics returns the topic categories matched by the given text,
// in an unspecified but deterministic-per-input order.
func DetectTopics(text string) []string {
	text = strings.ToLower(text)
	var topics []string
	for _, topic := range topicOrder {
		for _, kw := range topicKeywords[topic] {
			if strings.Contains(text, kw) {
				topics = append(topics, topic)
				break
			}
		}
	}
	return topics
}

// topicOrder fixes iteration order so repeated runs over the same issue
// produce the same topic list.
var topicOrder = []string{
	"backend", "frontend", "infrastructure", "testing",
	"documentation", "performance", "security",
}

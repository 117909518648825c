// Package classify derives an effort tier, deployment shape, and descriptive
// tags for a repository from its metadata and file listing. It is pure:
// identical inputs always produce identical results, and no network or
// filesystem access happens here.
package classify

import (
	"strings"

	"github.com/mathew-harvey/autodeploy/internal/models"
)

// Effort tiers. Tier 0 repos get a template fix with no agent involvement;
// tier 1 gets a light polish pass; tier 2 gets the full completion budget.
const (
	TierStatic = 0
	TierPolish = 1
	TierFull   = 2
)

// Deploy types understood by the deployment client.
const (
	DeployStatic = "static"
	DeployNode   = "node"
	DeployPython = "python"
	DeployDocker = "docker"
)

// Classification is the result of classifying one repository.
type Classification struct {
	Tier       int
	DeployType string
	Category   string
	TechStack  []string
	FileCount  int
}

// Signals are the file-listing facts the tier decision is built from.
type Signals struct {
	HasIndexHTML   bool
	HasHTML        bool
	HasCSS         bool
	HasJS          bool
	HasPython      bool
	HasCSharp      bool
	HasReact       bool
	HasServer      bool
	HasPackageJSON bool
	HasRequirements bool
	HasDockerfile  bool
	HasDescriptor  bool
	HasReadme      bool
	FileCount      int
}

// serverEntrypoints are filenames that indicate a runnable server.
var serverEntrypoints = []string{
	"server.js", "app.js", "index.js", "server.py", "app.py", "main.py",
}

// NewSignals derives signals from a file listing. Paths are matched
// case-insensitively.
func NewSignals(files []string) Signals {
	set := make(map[string]bool, len(files))
	for _, f := range files {
		set[strings.ToLower(f)] = true
	}

	var s Signals
	s.FileCount = len(set)
	s.HasPackageJSON = set["package.json"]
	s.HasRequirements = set["requirements.txt"]
	s.HasDockerfile = set["dockerfile"]
	s.HasDescriptor = set["render.yaml"]
	s.HasReadme = set["readme.md"]

	for f := range set {
		if strings.HasSuffix(f, "index.html") {
			s.HasIndexHTML = true
		}
		if strings.HasSuffix(f, ".html") {
			s.HasHTML = true
		}
		if strings.HasSuffix(f, ".css") {
			s.HasCSS = true
		}
		if strings.HasSuffix(f, ".js") || strings.HasSuffix(f, ".jsx") ||
			strings.HasSuffix(f, ".ts") || strings.HasSuffix(f, ".tsx") {
			s.HasJS = true
		}
		if strings.HasSuffix(f, ".py") {
			s.HasPython = true
		}
		if strings.HasSuffix(f, ".cs") || strings.HasSuffix(f, ".csproj") {
			s.HasCSharp = true
		}
		if strings.Contains(f, "react") || strings.HasSuffix(f, ".jsx") || strings.HasSuffix(f, ".tsx") {
			s.HasReact = true
		}
	}
	for _, entry := range serverEntrypoints {
		if set[entry] {
			s.HasServer = true
			break
		}
	}
	return s
}

// Classify turns repository metadata plus a file listing into a tier,
// deploy type, category, and tech stack.
func Classify(repo models.Repo, files []string) Classification {
	s := NewSignals(files)

	deployType := deployTypeFor(s)

	return Classification{
		Tier:       tierFor(s, deployType),
		DeployType: deployType,
		Category:   categoryFor(s, repo.Language),
		TechStack:  techStackFor(s, repo.Language),
		FileCount:  s.FileCount,
	}
}

// tierFor applies the tier rules in strict precedence order; the first
// matching rule wins.
func tierFor(s Signals, deployType string) int {
	switch {
	case s.FileCount <= 2:
		// Near-empty repos need real completion no matter what else is there.
		return TierFull
	case deployType == DeployStatic && s.HasIndexHTML && !s.HasPackageJSON:
		return TierStatic
	case deployType == DeployStatic && s.HasHTML && !s.HasPackageJSON:
		return TierStatic
	case s.HasDescriptor && s.HasReadme && s.HasPackageJSON:
		return TierPolish // mostly ready, just needs polish
	case s.HasCSharp || s.HasDockerfile:
		return TierFull
	case s.HasPackageJSON && !s.HasServer && !s.HasReact:
		return TierFull // node project with unclear purpose
	default:
		return TierPolish
	}
}

func deployTypeFor(s Signals) string {
	switch {
	case s.HasCSharp:
		return DeployDocker
	case s.HasPython && s.HasServer:
		return DeployPython
	case s.HasPackageJSON && s.HasServer:
		return DeployNode
	case s.HasPackageJSON && s.HasReact:
		return DeployNode // React app needs a build
	case s.HasHTML || s.HasIndexHTML:
		return DeployStatic
	case s.HasPackageJSON:
		return DeployNode
	case s.HasPython:
		return DeployPython
	default:
		return DeployStatic
	}
}

func categoryFor(s Signals, language string) string {
	lang := strings.ToLower(language)
	switch {
	case s.HasReact || (s.HasPackageJSON && s.HasServer):
		return "web-app"
	case s.HasServer && !s.HasHTML:
		return "api"
	case s.HasHTML && !s.HasPackageJSON:
		return "static-site"
	case s.HasPython && !s.HasHTML:
		return "cli-tool"
	case s.HasCSharp:
		return "api"
	case lang == "html" || lang == "css" || lang == "javascript":
		return "static-site"
	default:
		return "other"
	}
}

// techStackFor builds tags additively from file evidence, then prepends the
// declared primary language when it isn't already represented.
func techStackFor(s Signals, language string) []string {
	var stack []string
	if s.HasHTML {
		stack = append(stack, "HTML")
	}
	if s.HasCSS {
		stack = append(stack, "CSS")
	}
	if s.HasJS {
		stack = append(stack, "JavaScript")
	}
	if s.HasReact {
		stack = append(stack, "React")
	}
	if s.HasPython {
		stack = append(stack, "Python")
	}
	if s.HasCSharp {
		stack = append(stack, "C#")
	}

	if language != "" && !containsFold(stack, language) {
		stack = append([]string{capitalize(language)}, stack...)
	}
	return stack
}

func containsFold(tags []string, want string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mathew-harvey/autodeploy/internal/models"
)

func TestClassify_Deterministic(t *testing.T) {
	repo := models.Repo{Name: "demo", Language: "JavaScript"}
	files := []string{"index.html", "style.css", "app.js", "README.md"}

	first := Classify(repo, files)
	second := Classify(repo, files)
	assert.Equal(t, first, second)
}

func TestNewSignals_CaseInsensitive(t *testing.T) {
	s := NewSignals([]string{"Index.HTML", "Style.CSS", "Package.JSON", "Dockerfile"})
	assert.True(t, s.HasIndexHTML)
	assert.True(t, s.HasCSS)
	assert.True(t, s.HasPackageJSON)
	assert.True(t, s.HasDockerfile)
}

func TestNewSignals_ServerEntrypoints(t *testing.T) {
	assert.True(t, NewSignals([]string{"server.js", "x"}).HasServer)
	assert.True(t, NewSignals([]string{"app.py", "x"}).HasServer)
	assert.False(t, NewSignals([]string{"lib/server.js", "x"}).HasServer,
		"only root-level entrypoints count")
}

func TestTier_NearEmptyDominates(t *testing.T) {
	// Even a repo that looks static gets full completion when near-empty.
	repo := models.Repo{Name: "stub"}
	cls := Classify(repo, []string{"index.html", "README.md"})
	assert.Equal(t, TierFull, cls.Tier)
}

func TestTier_StaticSiteNoAgent(t *testing.T) {
	repo := models.Repo{Name: "site", Language: "HTML"}
	cls := Classify(repo, []string{"index.html", "style.css", "script.js", "README.md"})

	assert.Equal(t, TierStatic, cls.Tier)
	assert.Equal(t, DeployStatic, cls.DeployType)
	assert.Equal(t, "static-site", cls.Category)
}

func TestTier_HTMLWithPackageJSONIsNotStatic(t *testing.T) {
	repo := models.Repo{Name: "hybrid"}
	cls := Classify(repo, []string{"index.html", "package.json", "src/a.js", "README.md"})
	assert.NotEqual(t, TierStatic, cls.Tier)
}

func TestTier_ReadyNodeProjectGetsPolish(t *testing.T) {
	repo := models.Repo{Name: "ready"}
	files := []string{"render.yaml", "readme.md", "package.json", "server.js", "src/a.js"}
	cls := Classify(repo, files)

	assert.Equal(t, TierPolish, cls.Tier)
	assert.Equal(t, DeployNode, cls.DeployType)
}

func TestTier_CSharpNeedsFullCompletion(t *testing.T) {
	repo := models.Repo{Name: "legacy", Language: "C#"}
	cls := Classify(repo, []string{"program.cs", "app.csproj", "readme.md", "model.cs"})

	assert.Equal(t, TierFull, cls.Tier)
	assert.Equal(t, DeployDocker, cls.DeployType)
}

func TestTier_UnclearNodeProjectGetsFull(t *testing.T) {
	repo := models.Repo{Name: "mystery"}
	cls := Classify(repo, []string{"package.json", "lib/util.js", "readme.md"})
	assert.Equal(t, TierFull, cls.Tier)
}

func TestDeployType(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{"python server", []string{"app.py", "requirements.txt", "templates/x.py"}, DeployPython},
		{"node server", []string{"package.json", "server.js", "a.js"}, DeployNode},
		{"react app", []string{"package.json", "src/app.jsx", "readme.md"}, DeployNode},
		{"plain html", []string{"index.html", "a.css", "b.css"}, DeployStatic},
		{"bare python", []string{"tool.py", "util.py", "readme.md"}, DeployPython},
		{"nothing recognizable", []string{"notes.txt", "data.csv", "more.txt"}, DeployStatic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := Classify(models.Repo{Name: "x"}, tt.files)
			assert.Equal(t, tt.want, cls.DeployType)
		})
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		lang  string
		want  string
	}{
		{"react web app", []string{"package.json", "src/app.jsx", "x.js"}, "", "web-app"},
		{"headless server", []string{"server.py", "requirements.txt", "db.py"}, "", "api"},
		{"static site", []string{"index.html", "a.css", "b.js"}, "", "static-site"},
		{"python cli", []string{"cli.py", "util.py", "readme.md"}, "", "cli-tool"},
		{"language fallback", []string{"a.txt", "b.txt", "c.txt"}, "JavaScript", "static-site"},
		{"other", []string{"a.txt", "b.txt", "c.txt"}, "Go", "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := Classify(models.Repo{Name: "x", Language: tt.lang}, tt.files)
			assert.Equal(t, tt.want, cls.Category)
		})
	}
}

func TestTechStack_EvidenceTags(t *testing.T) {
	cls := Classify(models.Repo{Name: "x"}, []string{"index.html", "style.css", "app.js"})
	assert.Equal(t, []string{"HTML", "CSS", "JavaScript"}, cls.TechStack)
}

func TestTechStack_DeclaredLanguagePrepended(t *testing.T) {
	cls := Classify(models.Repo{Name: "x", Language: "typescript"},
		[]string{"index.html", "a.css", "b.css"})
	assert.Equal(t, "Typescript", cls.TechStack[0])
}

func TestTechStack_NoDuplicateLanguage(t *testing.T) {
	cls := Classify(models.Repo{Name: "x", Language: "python"},
		[]string{"main.py", "util.py", "cli.py"})
	assert.Equal(t, []string{"Python"}, cls.TechStack)
}

func TestFileCount_DeduplicatesListing(t *testing.T) {
	s := NewSignals([]string{"A.txt", "a.txt", "b.txt"})
	assert.Equal(t, 2, s.FileCount)
}

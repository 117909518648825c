package portfolio

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/mathew-harvey/autodeploy/internal/models"
)

type indexData struct {
	Username    string
	Generated   string
	Projects    []*models.ProjectRecord
	Categories  []string
	TechCount   int
	LiveCount   int
	AccountURL  string
	ProjectsLen int
}

// renderIndex produces the portfolio index.html.
func renderIndex(projects []*models.ProjectRecord, username string, generated time.Time) (string, error) {
	data := indexData{
		Username:    username,
		Generated:   generated.Format("2006-01-02"),
		Projects:    projects,
		AccountURL:  fmt.Sprintf("https://github.com/%s", username),
		ProjectsLen: len(projects),
	}

	techs := map[string]bool{}
	cats := map[string]bool{}
	for _, p := range projects {
		for _, t := range p.TechStack {
			techs[t] = true
		}
		if p.Category != "" {
			cats[p.Category] = true
		}
		if p.Status == models.StatusAlreadyLive {
			data.LiveCount++
		}
	}
	data.TechCount = len(techs)
	for c := range cats {
		data.Categories = append(data.Categories, c)
	}
	sort.Strings(data.Categories)

	var sb strings.Builder
	if err := indexTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render portfolio: %w", err)
	}
	return sb.String(), nil
}

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"monogram": Monogram,
	"isLive": func(s models.ProjectStatus) bool {
		return s == models.StatusAlreadyLive
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Username}} | Developer Portfolio</title>
<style>
:root { --bg:#0a0a0f; --surface:#12121a; --border:#2a2a3a; --text:#e8e8f0;
        --muted:#8888a0; --accent:#00e5a0; --live:#22c55e; }
* { margin:0; padding:0; box-sizing:border-box; }
body { font-family:monospace; background:var(--bg); color:var(--text); }
header { padding:3rem 2rem 2rem; max-width:1400px; margin:0 auto; }
h1 { font-size:clamp(2rem,6vw,4rem); }
h1 span { color:var(--accent); }
.stats { display:flex; gap:2rem; padding:1rem 0; border-top:1px solid var(--border);
         border-bottom:1px solid var(--border); margin-top:1.5rem; flex-wrap:wrap; }
.stat-value { font-size:1.6rem; font-weight:700; color:var(--accent); display:block; }
.stat-label { font-size:.7rem; color:var(--muted); text-transform:uppercase; }
.grid { display:grid; grid-template-columns:repeat(auto-fill,minmax(360px,1fr)); gap:1px;
        background:var(--border); max-width:1400px; margin:2rem auto 4rem; border:1px solid var(--border); }
.card { background:var(--surface); padding:1.25rem 1.5rem; display:flex; flex-direction:column; }
.card-header { display:flex; justify-content:space-between; margin-bottom:.5rem; }
.card-name { font-weight:600; }
.card-category { font-size:.6rem; text-transform:uppercase; color:var(--accent); }
.card-desc { color:var(--muted); font-size:.78rem; line-height:1.5; flex:1; margin-bottom:.75rem; }
.card-preview img { width:100%; height:180px; object-fit:cover; margin-bottom:.75rem; }
.monogram { width:100%; height:180px; display:flex; align-items:center; justify-content:center;
            border:1px solid var(--border); color:var(--muted); margin-bottom:.75rem; }
.tech-tag { font-size:.6rem; color:var(--muted); border:1px solid var(--border);
            padding:.12rem .45rem; margin-right:.35rem; }
.status { font-size:.6rem; text-transform:uppercase; }
.status.live { color:var(--live); }
.status.new { color:var(--accent); }
.links { margin-top:.75rem; padding-top:.5rem; border-top:1px solid var(--border); }
.links a { font-size:.72rem; color:var(--muted); text-decoration:none; margin-right:1rem; }
.links a:hover { color:var(--accent); }
footer { text-align:center; padding:2rem; color:var(--muted); font-size:.75rem;
         border-top:1px solid var(--border); max-width:1400px; margin:0 auto; }
footer a { color:var(--accent); }
</style>
</head>
<body>
<header>
  <h1><span>{{.Username}}</span></h1>
  <div class="stats">
    <div class="stat"><span class="stat-value">{{.ProjectsLen}}</span><span class="stat-label">Projects Live</span></div>
    <div class="stat"><span class="stat-value">{{.LiveCount}}</span><span class="stat-label">Already Deployed</span></div>
    <div class="stat"><span class="stat-value">{{.TechCount}}</span><span class="stat-label">Technologies</span></div>
    <div class="stat"><span class="stat-value">{{len .Categories}}</span><span class="stat-label">Categories</span></div>
  </div>
</header>
<div class="grid">
{{range .Projects}}  <div class="card">
    {{if .GIFURL}}<div class="card-preview"><img src="{{.GIFURL}}" alt="{{.Name}} preview" loading="lazy"></div>
    {{else}}<div class="monogram">{{monogram .Name}}</div>
    {{end}}<div class="card-header">
      <span class="card-name">{{.Name}}</span>
      <span class="card-category">{{.Category}}</span>
    </div>
    {{if isLive .Status}}<span class="status live">Live</span>{{else}}<span class="status new">New Deploy</span>{{end}}
    <p class="card-desc">{{if .Description}}{{.Description}}{{else}}No description{{end}}</p>
    <div>{{range .TechStack}}<span class="tech-tag">{{.}}</span>{{end}}</div>
    <div class="links">
      <a href="{{.GitHubURL}}" target="_blank">Source</a>
      {{if .DeployURL}}<a href="{{.DeployURL}}" target="_blank">Live Site</a>{{end}}
    </div>
  </div>
{{end}}</div>
<footer>
  <p>Autonomously deployed &middot; <a href="{{.AccountURL}}" target="_blank">GitHub</a> &middot; Built {{.Generated}}</p>
</footer>
</body>
</html>
`))

// Monogram condenses a repository name into up to three initials for the
// preview placeholder.
func Monogram(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	var sb strings.Builder
	for _, w := range words {
		if sb.Len() >= 3 {
			break
		}
		sb.WriteString(strings.ToUpper(w[:1]))
	}
	return sb.String()
}

package agent

import "fmt"

// Turn budgets per task intent. Polish and fix tasks are small and focused;
// full completion gets the configured ceiling.
const (
	PolishTurns = 15
	FixTurns    = 15
)

// staticDescriptorSnippet is the render.yaml shape quoted inside prompts so
// the agent produces the same file the tier-0 template path writes.
const staticDescriptorSnippet = `services:
  - type: web
    name: %s
    runtime: static
    staticPublishPath: ./
`

// PolishPrompt is the tier-1 task: make the project presentable and
// deployable without rewriting it.
func PolishPrompt(serviceName string) string {
	return fmt.Sprintf(`You are preparing this project for deployment. Be QUICK and FOCUSED.

DO THESE THINGS ONLY:
1. Read the project to understand what it does
2. Write a GOOD README.md -- clear title, description, tech stack, how to run it
3. If render.yaml is missing, add one (static site unless it clearly needs a server)
4. Fix any OBVIOUS bugs (missing files, broken imports) but don't rewrite the project
5. Commit with message "auto: polish and prepare for deployment"

For render.yaml, use:
`+staticDescriptorSnippet+`
Do NOT spend time on big refactors. Just make it presentable and deployable.
`, serviceName)
}

// CompletePrompt is the tier-2 task: make the project actually work as a
// deployed web application.
func CompletePrompt(serviceName string) string {
	return fmt.Sprintf(`You are an autonomous coding agent. Make this project WORK as a deployed web application.

BE AMBITIOUS but EFFICIENT. You have limited turns.

PRIORITIES (in order):
1. Read and understand the project purpose
2. Write a GOOD README.md -- clear title, description, features, tech stack
3. Fix ALL bugs, missing imports, broken dependencies
4. If it's Node/React: fix package.json, ensure build works
5. If it's Python: fix requirements.txt, ensure it runs
6. If it's plain HTML/CSS/JS: ensure index.html works
7. Make it VISUALLY PRESENTABLE
8. Add render.yaml for deployment:

For static sites:
`+staticDescriptorSnippet+`
For Node servers:
services:
  - type: web
    name: %s
    runtime: node
    buildCommand: npm install
    startCommand: node server.js
    plan: free

9. Commit ALL changes with message "auto: complete and prepare for deployment"

Do NOT give up. Make it work.
`, serviceName, serviceName)
}

// FixPrompt feeds a deployment error back to the agent with the common
// remediation hints.
func FixPrompt(serviceName, deployErr string) string {
	return fmt.Sprintf(`The deployment FAILED with this error:

%s

Fix the project so it deploys successfully. Common issues:
- If "must include serviceDetails": the render.yaml might specify a non-static runtime but the project should be static. Change render.yaml to use runtime: static if it's just HTML/CSS/JS.
- If the build fails: fix the build command or dependencies.
- If it's a Node project, make sure package.json has valid "start" and "build" scripts.
- If it's truly a static site (HTML/CSS/JS only), use this render.yaml:

`+staticDescriptorSnippet+`
After fixing, commit the changes with message "auto: fix deployment config".
`, deployErr, serviceName)
}

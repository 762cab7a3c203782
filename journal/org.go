package journal

import (
	"bytes"
	"os"
	"text/template"
	"time"
)

var orgFuncs = template.FuncMap{
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

// RenderOrg renders a run summary as an org-mode block. The same text is
// what the email notifier sends. Notes usually carry skip reasons.
func RenderOrg(r RunRecord, notes []string) (string, error) {
	t, err := template.New("run").Funcs(orgFuncs).Parse(runOrgTemplate)
	if err != nil {
		return "", err
	}

	buf := new(bytes.Buffer)
	err = t.Execute(buf, struct {
		RunRecord
		Notes []string
	}{r, notes})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteOrg renders the run summary and writes it to path.
func WriteOrg(path string, r RunRecord, notes []string) error {
	s, err := RenderOrg(r, notes)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0644)
}

const runOrgTemplate = `
* BACKTEST: {{.Strategy}} ({{.Symbols}} symbols)
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:STRATEGY:    {{.Strategy}}
:START_DATE:  {{.Start.Format "2006-01-02"}}
:END_DATE:    {{.End.Format "2006-01-02"}}
:START_CASH:  {{printf "%.2f" .StartingCash}}
:END_CASH:    {{printf "%.2f" .EndingCash}}
:END_EQUITY:  {{printf "%.2f" .EndingEquity}}
:BUYS:        {{.Buys}}
:SELLS:       {{.Sells}}
:HOLDS:       {{.Holds}}
:SKIPS:       {{.Skips}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Decision Distribution
| Decision | Count |
|----------+-------|
| Buy      | {{.Buys}} |
| Sell     | {{.Sells}} |
| Hold     | {{.Holds}} |
| Skipped  | {{.Skips}} |

{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`

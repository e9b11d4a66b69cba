package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

var quotaBody = template.Must(template.New("quota").Parse(`<!doctype html>
<html>
<body>
{{- if .Exhausted }}
<p>Your workspace has used its full quota for <strong>{{ .Feature }}</strong> this period ({{ .Used }} of {{ .Limit }}).</p>
<p>Further use is blocked until the quota resets or the plan is upgraded.</p>
{{- else }}
<p>Your workspace has used {{ .Percent }}% of its quota for <strong>{{ .Feature }}</strong> this period ({{ .Used }} of {{ .Limit }}).</p>
{{- end }}
<p>Period: {{ .Period }}</p>
{{- if .UpgradeURL }}
<p><a href="{{ .UpgradeURL }}">Review your plan</a></p>
{{- end }}
</body>
</html>`))

type quotaView struct {
	Feature    string
	Used       int64
	Limit      int64
	Percent    int
	Period     string
	Exhausted  bool
	UpgradeURL string
}

func (v quotaView) subject() string {
	if v.Exhausted {
		return fmt.Sprintf("%s quota reached", v.Feature)
	}
	return fmt.Sprintf("%s usage at %d%%", v.Feature, v.Percent)
}

func renderQuota(v quotaView) (string, error) {
	var buf bytes.Buffer
	if err := quotaBody.Execute(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

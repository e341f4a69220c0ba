package render

import (
	"io"
	"text/template"

	"github.com/yumyai/panva/logger"
	"go.uber.org/zap"
)

var loadJobPageTemplate *template.Template

// LoadJobPageData describes the state of a background load for rendering.
type LoadJobPageData struct {
	JobID                  string
	Kind                   string
	Target                 string
	Status                 string
	ErrorMessage           string
	ShouldRefresh          bool
	RefreshIntervalSeconds int
}

// init initializes the templates used for rendering the HTML page.
func init() {
	mainTmpl := `
	<!DOCTYPE html>
	<html>
	<head>
	    <title>PanVA load</title>
		{{ if .ShouldRefresh }}
        <script>
	        setTimeout(function () { window.location.reload(); }, {{ mul .RefreshIntervalSeconds 1000 }});
        </script>
		{{ end }}
	</head>
	<body>
		<h1>PanVA</h1>
		<p><strong>Job ID:</strong> {{ .JobID }}</p>
		<p><strong>Load:</strong> {{ .Kind }} {{ .Target }}</p>
		<p><strong>Status:</strong> {{ .Status }}</p>
		{{ if .ErrorMessage }}
			<p style="color: red;">{{ .ErrorMessage }}</p>
		{{ else if .ShouldRefresh }}
			<p>The load is still running. This page refreshes every {{ .RefreshIntervalSeconds }} seconds.</p>
		{{ else }}
			<p><a href="/">Open the overview</a></p>
		{{ end }}
	</body>
	</html>`

	loadJobPageTemplate = template.New("load_job_page").Funcs(template.FuncMap{
		"mul": func(a, b int) int { return a * b },
	})
	loadJobPageTemplate = template.Must(loadJobPageTemplate.Parse(mainTmpl))
}

func RenderLoadJobPage(w io.Writer, data LoadJobPageData) error {
	logger.Info("Rendering load job page", zap.String("job_id", data.JobID), zap.String("status", data.Status))
	return loadJobPageTemplate.Execute(w, data)
}

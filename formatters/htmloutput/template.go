// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package htmloutput

import (
	"fmt"

	"github.com/google/safehtml/template"
)

var pageTemplate = template.Must(template.New("results").Funcs(template.FuncMap{
	"seconds": formatSeconds,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Benchmark results</title>
<style>
body { font-family: sans-serif; }
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { padding: 0.2em 0.6em; text-align: right; }
th.name, td.name { text-align: left; }
tr:nth-child(even) { background: #f4f4f4; }
</style>
</head>
<body>
{{- range .}}
<h2>{{if .Label}}{{.Label}}{{else}}{{.RunID}}{{end}}</h2>
<p>Run {{.RunID}}{{if .StartTime}}, started {{.StartTime}}{{end}}{{if .Interrupted}} (interrupted){{end}}</p>
{{- if .Stories}}
<table>
<tr><th class="name">benchmark</th><th class="name">story</th><th>runs</th><th>pass</th><th>fail</th><th>skip</th><th>mean</th><th>min</th><th>max</th><th>outliers</th></tr>
{{- range .Stories}}
<tr><td class="name">{{.Benchmark}}</td><td class="name">{{.Story}}</td><td>{{.Runs}}</td><td>{{.Pass}}</td><td>{{.Fail}}</td><td>{{.Skip}}</td>
{{- with .Durations}}{{if .N}}<td>{{seconds .Mean}}</td><td>{{seconds .Min}}</td><td>{{seconds .Max}}</td><td>{{.Outliers}}</td>{{else}}<td>-</td><td>-</td><td>-</td><td>-</td>{{end}}{{end}}</tr>
{{- end}}
</table>
{{- else}}
<p>No test results.</p>
{{- end}}
{{- end}}
</body>
</html>
`))

func formatSeconds(s float64) string {
	return fmt.Sprintf("%.3fs", s)
}

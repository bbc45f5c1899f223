package admin

import (
	"fmt"
	"html"
	"strings"
)

// renderPage wraps body in the shared page shell.
func renderPage(body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <title>Front Door</title>
  <meta charset="utf-8">
  <style>
    body { font-family: sans-serif; margin: 2rem; }
    table { border-collapse: collapse; margin: 1rem 0; }
    th, td { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: left; }
    th { background: #f4f4f4; }
    hr.solid { border-top: 1px solid #bbb; }
  </style>
</head>
<body>
%s
</body>
</html>`, body)
}

// buildTable renders rows as an HTML table titled name. Cell values are
// escaped; long values are truncated so script bodies don't flood the page.
func buildTable(name string, headers []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>%s</h3>\n<table>\n<tr>", html.EscapeString(name))
	for _, h := range headers {
		fmt.Fprintf(&b, "<th>%s</th>", html.EscapeString(h))
	}
	b.WriteString("</tr>\n")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			if len(cell) > 80 {
				cell = cell[:80] + "…"
			}
			fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(cell))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>")
	return b.String()
}

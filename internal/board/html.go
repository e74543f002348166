package board

import (
	"html/template"
	"io"
)

// PageView is the data handed to the board template.
type PageView struct {
	Title          string
	RefreshSeconds int
	Snapshot       Snapshot
}

var pageTemplate = template.Must(template.New("board").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{- if gt .RefreshSeconds 0}}
<meta http-equiv="refresh" content="{{.RefreshSeconds}}">
{{- end}}
<title>{{.Title}}</title>
</head>
<body style="margin:0;padding:16px;background:#0f1012;font-family:Helvetica,Arial,sans-serif;">
{{- range .Snapshot.Tables}}
<table id="{{.ID}}" width="100%" cellspacing="0" cellpadding="0" style="border-collapse:collapse;margin-bottom:16px;table-layout:fixed;">
<caption style="text-align:left;color:#f6f7f8;font-size:20px;font-weight:bold;padding:6px 0;">{{.Label}}</caption>
<tbody>
{{- range .Rows}}
{{- if .Placeholder}}
<tr>
<td align="left" style="padding:8px 10px;width:70px;background:{{.BadgeBackground}};color:{{.BadgeColor}};font-weight:bold;font-size:18px;">{{.Badge}}</td>
<td align="left" style="padding:8px 10px;font-size:19px;background:#f6f7f8;">{{.Destination}}</td>
<td align="right" style="padding:8px 10px;font-size:19px;background:#f6f7f8;"></td>
</tr>
{{- else}}
<tr style="background:{{.Background}};">
<td style="padding:8px;width:55px;background:{{.BadgeBackground}};color:{{.BadgeColor}};font-weight:800;font-size:18px;">{{.Badge}}</td>
<td style="padding:8px 10px;font-size:19px;white-space:nowrap;overflow:hidden;text-overflow:ellipsis;">{{.Destination}}</td>
<td style="padding:8px 8px 8px 10px;font-size:19px;font-variant-numeric:tabular-nums;text-align:right;width:80px;min-width:76px;">{{.Time}}</td>
</tr>
{{- end}}
{{- end}}
</tbody>
</table>
{{- end}}
<p style="color:#dcdfe1;font-size:14px;">
<span id="last-updated">{{.Snapshot.Text "last-updated"}}</span>
<span id="refresh-status" style="color:#F2922C;margin-left:12px;">{{.Snapshot.Text "refresh-status"}}</span>
</p>
</body>
</html>
`))

// WriteHTML renders view as a complete HTML document.
func WriteHTML(w io.Writer, view PageView) error {
	return pageTemplate.Execute(w, view)
}

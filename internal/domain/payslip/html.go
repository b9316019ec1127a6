package payslip

import (
	"bytes"
	"html/template"
)

var htmlReport = template.Must(template.New("payslip").Parse(`<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="utf-8">
<title>{{.Title}} - {{.Period}}</title>
<style>
  body { font-family: "Noto Sans KR", "Malgun Gothic", sans-serif; margin: 32px; color: #222; }
  h1 { font-size: 22px; border-bottom: 2px solid #222; padding-bottom: 8px; }
  table { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
  th, td { padding: 6px 8px; border-bottom: 1px solid #ddd; text-align: left; }
  td.amount { text-align: right; font-variant-numeric: tabular-nums; }
  tr.total td { font-weight: bold; border-top: 1px solid #222; }
  .net { background: #f0f6ff; border: 2px solid #2a5bd7; padding: 12px 16px; font-size: 18px; font-weight: bold; }
  .net span { float: right; }
  .notes { color: #666; font-size: 12px; }
</style>
</head>
<body>
<h1>{{.Title}} ({{.Period}})</h1>
<table>
  <tr><th>사업장</th><td>{{if .BusinessName}}{{.BusinessName}}{{else}}{{.BusinessID}}{{end}}</td></tr>
  <tr><th>직원</th><td>{{if .EmployeeName}}{{.EmployeeName}} ({{.UserID}}){{else}}{{.UserID}}{{end}}</td></tr>
  {{if .Position}}<tr><th>직위</th><td>{{.Position}}</td></tr>{{end}}
  <tr><th>급여형태</th><td>{{.WageType}}</td></tr>
  <tr><th>기간</th><td>{{.PeriodRange}}</td></tr>
</table>
<h2>근무 내역</h2>
<table>
  {{range .WorkSummary}}<tr><td>{{.Label}}</td><td class="amount">{{.Formatted}}</td></tr>
  {{end}}
</table>
<h2>지급 내역</h2>
<table>
  {{range .Earnings}}<tr><td>{{.Label}}</td><td class="amount">{{.Formatted}}</td></tr>
  {{end}}<tr class="total"><td>{{.GrossPay.Label}}</td><td class="amount">{{.GrossPay.Formatted}}</td></tr>
</table>
<h2>공제 내역</h2>
<table>
  {{range .Deductions}}<tr><td>{{.Label}}</td><td class="amount">{{.Formatted}}</td></tr>
  {{end}}<tr class="total"><td>{{.TotalDeductions.Label}}</td><td class="amount">{{.TotalDeductions.Formatted}}</td></tr>
</table>
<div class="net">{{.NetPay.Label}} <span>{{.NetPay.Formatted}}</span></div>
{{if .Notes}}<ul class="notes">{{range .Notes}}<li>{{.}}</li>{{end}}</ul>{{end}}
</body>
</html>
`))

func GenerateHTMLReport(r Report) (string, error) {
	var buf bytes.Buffer
	if err := htmlReport.Execute(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

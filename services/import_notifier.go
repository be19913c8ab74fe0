package services

import (
	"bytes"
	"fmt"
	"html/template"

	"magazine-catalog-api/config"
	"magazine-catalog-api/models"
	"magazine-catalog-api/utils"
)

// ImportNotifier is told about every committed import.
type ImportNotifier interface {
	NotifyImport(result *models.ImportResult, actor string) error
}

// MailImportNotifier mails an import summary to IMPORT_NOTIFY_EMAILS.
type MailImportNotifier struct {
	settings config.Settings
	send     func(s config.Settings, to []string, subject, html string) error
}

func NewMailImportNotifier(s config.Settings) *MailImportNotifier {
	s.ImportNotifyEmails = utils.FilterEmails(s.ImportNotifyEmails)
	return &MailImportNotifier{settings: s, send: config.SendMail}
}

// Enabled reports whether there is anyone to mail and a server to mail through.
func (n *MailImportNotifier) Enabled() bool {
	return len(n.settings.ImportNotifyEmails) > 0 && n.settings.MailConfigured()
}

func (n *MailImportNotifier) NotifyImport(result *models.ImportResult, actor string) error {
	if !n.Enabled() || result == nil {
		return nil
	}
	body, err := renderImportSummary(result, actor)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Magazine import: %d magazines, %d issues created",
		result.CreatedMagazines, result.CreatedIssues)
	return n.send(n.settings, n.settings.ImportNotifyEmails, subject, body)
}

var importSummaryTemplate = template.Must(template.New("summary").Parse(`<h2>Magazine import finished</h2>
<p>Run by {{if .Actor}}{{.Actor}}{{else}}an unknown user{{end}}.</p>
<ul>
  <li>Magazines created: {{.Result.CreatedMagazines}}, already present: {{.Result.SkippedMagazines}}</li>
  <li>Issues created: {{.Result.CreatedIssues}}, already present: {{.Result.SkippedIssues}}</li>
</ul>
<table border="1" cellpadding="4" cellspacing="0">
  <tr><th>Magazine</th><th>Status</th><th>Issues</th></tr>
  {{range .Result.Details}}<tr><td>{{.MagazineName}}</td><td>{{.Status}}</td><td>{{range $i, $is := .Issues}}{{if $i}}, {{end}}{{$is.IssueNumber}} ({{$is.Status}}){{end}}</td></tr>
  {{end}}
</table>`))

func renderImportSummary(result *models.ImportResult, actor string) (string, error) {
	var buf bytes.Buffer
	err := importSummaryTemplate.Execute(&buf, struct {
		Actor  string
		Result *models.ImportResult
	}{Actor: actor, Result: result})
	if err != nil {
		return "", fmt.Errorf("render import summary: %w", err)
	}
	return buf.String(), nil
}

package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

var contactTemplate = template.Must(template.New("contact").Funcs(template.FuncMap{
	"lines": func(s string) []string { return strings.Split(s, "\n") },
}).Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; line-height:1.6; color:#333;">
    <h2 style="margin:0 0 10px 0;">New Contact Submission</h2>
    <p><strong>Name:</strong> {{.Name}}</p>
    <p><strong>Email:</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
    {{- if .Company}}
    <p><strong>Company:</strong> {{.Company}}</p>
    {{- end}}
    {{- if .InterestedIn}}
    <p><strong>Interested In:</strong> {{.InterestedIn}}</p>
    {{- end}}
    <div style="margin-top:16px; padding:12px; background:#f8f9fa; border-left:4px solid #667eea; border-radius:6px;">
      <div style="font-weight:600; margin-bottom:6px;">Message</div>
      <div>{{range $i, $line := lines .Message}}{{if $i}}<br>{{end}}{{$line}}{{end}}</div>
    </div>
  </body>
</html>
`))

// ContactNotice is a website contact form submission to forward.
type ContactNotice struct {
	Name         string
	Email        string
	Company      string
	InterestedIn string
	Message      string
	ReplyTo      string
}

// RenderContactHTML renders the operator email for a contact submission.
// All user-provided fields are HTML-escaped; newlines in the message become
// <br> tags.
func RenderContactHTML(n ContactNotice) (string, error) {
	var buf bytes.Buffer
	if err := contactTemplate.Execute(&buf, n); err != nil {
		return "", fmt.Errorf("notify: render contact email: %w", err)
	}
	return buf.String(), nil
}

func renderContactText(n ContactNotice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\n", n.Name, n.Email)
	if n.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", n.Company)
	}
	if n.InterestedIn != "" {
		fmt.Fprintf(&b, "Interested In: %s\n", n.InterestedIn)
	}
	fmt.Fprintf(&b, "\n%s\n", n.Message)
	return b.String()
}

// AngelaMos | 2026
// template.go

package notify

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/angelamos/studio-portal/internal/core"
)

const (
	TemplateWelcome       = "welcome"
	TemplateProjectUpdate = "project_update"
	TemplateContact       = "contact"
)

type Template struct {
	Key       string     `db:"key"        json:"key"`
	Subject   string     `db:"subject"    json:"subject"`
	Body      string     `db:"body"       json:"body"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
	IsDefault bool       `db:"-"          json:"is_default"`
}

type WelcomeData struct {
	Name              string
	Email             string
	TemporaryPassword string
	PortalURL         string
}

type ProjectUpdateData struct {
	Name         string
	ProjectTitle string
	Status       string
	Note         string
	PortalURL    string
}

type ContactData struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

var defaultTemplates = map[string]Template{
	TemplateWelcome: {
		Key:     TemplateWelcome,
		Subject: "Welcome to your project portal",
		Body: `Hello {{.Name}},

Your client portal account is ready.

Sign in at {{.PortalURL}} with {{.Email}} and the temporary password below,
then choose a new password under account settings.

Temporary password: {{.TemporaryPassword}}
`,
	},
	TemplateProjectUpdate: {
		Key:     TemplateProjectUpdate,
		Subject: "Update on {{.ProjectTitle}}",
		Body: `Hello {{.Name}},

There is news on {{.ProjectTitle}}. Current status: {{.Status}}.
{{if .Note}}
{{.Note}}
{{end}}
View the details at {{.PortalURL}}.
`,
	},
	TemplateContact: {
		Key:     TemplateContact,
		Subject: "Website enquiry: {{if .Subject}}{{.Subject}}{{else}}{{.Name}}{{end}}",
		Body: `From: {{.Name}} <{{.Email}}>{{if .Phone}}
Phone: {{.Phone}}{{end}}

{{.Message}}
`,
	},
}

func KnownTemplate(key string) bool {
	_, ok := defaultTemplates[key]
	return ok
}

func DefaultTemplate(key string) (Template, bool) {
	t, ok := defaultTemplates[key]
	if ok {
		t.IsDefault = true
	}
	return t, ok
}

// Render executes subject and body against data. Unknown fields fail
// rather than rendering "<no value>".
func Render(t Template, data any) (subject, body string, err error) {
	subject, err = execute(t.Key+".subject", t.Subject, data)
	if err != nil {
		return "", "", err
	}
	body, err = execute(t.Key+".body", t.Body, data)
	if err != nil {
		return "", "", err
	}
	return subject, body, nil
}

func execute(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// sampleData is what an edited template must render against before it
// is saved.
func sampleData(key string) any {
	switch key {
	case TemplateWelcome:
		return WelcomeData{Name: "Alex", Email: "alex@example.com", TemporaryPassword: "temp", PortalURL: "https://example.com/portal"}
	case TemplateProjectUpdate:
		return ProjectUpdateData{Name: "Alex", ProjectTitle: "Lake House", Status: "In Progress", Note: "Drawings approved.", PortalURL: "https://example.com/portal"}
	default:
		return ContactData{Name: "Alex", Email: "alex@example.com", Message: "Hello"}
	}
}

func ValidateTemplate(t Template) error {
	fields := core.FieldErrors{}
	if t.Subject == "" {
		fields["subject"] = "subject is required"
	}
	if t.Body == "" {
		fields["body"] = "body is required"
	}
	if len(fields) > 0 {
		return fields
	}

	data := sampleData(t.Key)
	if _, err := execute("subject", t.Subject, data); err != nil {
		fields["subject"] = err.Error()
	}
	if _, err := execute("body", t.Body, data); err != nil {
		fields["body"] = err.Error()
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}

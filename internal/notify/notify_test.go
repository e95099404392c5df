// AngelaMos | 2026
// notify_test.go

package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/studio-portal/internal/core"
)

func TestRender_Defaults(t *testing.T) {
	welcome, ok := DefaultTemplate(TemplateWelcome)
	require.True(t, ok)

	subject, body, err := Render(welcome, WelcomeData{
		Name:              "Dana",
		Email:             "dana@example.com",
		TemporaryPassword: "Xy12",
		PortalURL:         "https://studio.test/portal",
	})
	require.NoError(t, err)
	assert.Equal(t, "Welcome to your project portal", subject)
	assert.Contains(t, body, "Hello Dana,")
	assert.Contains(t, body, "Temporary password: Xy12")

	update, _ := DefaultTemplate(TemplateProjectUpdate)
	subject, _, err = Render(update, ProjectUpdateData{ProjectTitle: "Lake House"})
	require.NoError(t, err)
	assert.Equal(t, "Update on Lake House", subject)
}

func TestValidateTemplate(t *testing.T) {
	err := ValidateTemplate(Template{Key: TemplateWelcome, Subject: "Hi {{.Nmae}}", Body: "ok"})
	var fields core.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "subject")

	err = ValidateTemplate(Template{Key: TemplateWelcome, Subject: "Hi {{.Name", Body: "ok"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	assert.NoError(t, ValidateTemplate(Template{Key: TemplateContact, Subject: "From {{.Name}}", Body: "{{.Message}}"}))
}

func TestNotifier_TemplateFallsBackToDefault(t *testing.T) {
	n := NewNotifier(NewRecordingSender(), NewMemoryTemplateRepository(), nil)
	ctx := context.Background()

	tmpl, err := n.Template(ctx, TemplateContact)
	require.NoError(t, err)
	assert.True(t, tmpl.IsDefault)

	_, err = n.Template(ctx, "invoice")
	assert.ErrorIs(t, err, core.ErrNotFound)

	saved, err := n.UpdateTemplate(ctx, Template{Key: TemplateContact, Subject: "Lead: {{.Name}}", Body: "{{.Message}}"})
	require.NoError(t, err)
	assert.False(t, saved.IsDefault)

	tmpl, err = n.Template(ctx, TemplateContact)
	require.NoError(t, err)
	assert.Equal(t, "Lead: {{.Name}}", tmpl.Subject)
}

func TestNotifier_DispatchDelivers(t *testing.T) {
	sender := NewRecordingSender()
	n := NewNotifier(sender, NewMemoryTemplateRepository(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	n.Dispatch(ctx, TemplateContact, "office@studio.test", "lead@example.com", ContactData{
		Name:    "Lee",
		Email:   "lead@example.com",
		Message: "We want an extension.",
	})
	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	require.NoError(t, n.Wait(waitCtx))

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "office@studio.test", sent[0].To)
	assert.Equal(t, "lead@example.com", sent[0].ReplyTo)
	assert.Equal(t, "Website enquiry: Lee", sent[0].Subject)
}

func TestNotifier_SendFailureIsReported(t *testing.T) {
	sender := NewRecordingSender()
	sender.FailWith(errors.New("throttled"))
	n := NewNotifier(sender, NewMemoryTemplateRepository(), nil)

	err := n.Send(context.Background(), TemplateWelcome, "a@b.co", "", WelcomeData{Name: "A"})
	assert.ErrorContains(t, err, "throttled")

	n.Dispatch(context.Background(), TemplateWelcome, "a@b.co", "", WelcomeData{Name: "A"})
	require.NoError(t, n.Wait(context.Background()))
}

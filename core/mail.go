package core

import (
	"bytes"
	"embed"
	htmltmpl "html/template"
	"net/mail"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

//go:embed templates/email
var templateFS embed.FS

var (
	textTemplates *texttmpl.Template
	htmlTemplates *htmltmpl.Template
	tmplErr       error
	tmplInit      sync.Once
)

type (
	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

func parseTemplates() {
	textTemplates, tmplErr = texttmpl.ParseFS(templateFS, "templates/email/*.txt")
	if tmplErr != nil {
		return
	}
	htmlTemplates, tmplErr = htmltmpl.ParseFS(templateFS, "templates/email/*.gohtml")
	if tmplErr == nil {
		textTemplates = textTemplates.Option("missingkey=error")
		htmlTemplates = htmlTemplates.Option("missingkey=error")
	}
}

// Render fills TextContent and HTMLContent from BodyStr or the named template.
func (m *EmailMessage) Render() error {
	if m.TemplateName == "" {
		m.TextContent = m.BodyStr
		return nil
	}

	tmplInit.Do(parseTemplates) // only execute once during first request
	if tmplErr != nil {
		return errors.Wrap(tmplErr, "parsing email templates")
	}

	var buff bytes.Buffer
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
	} else if tmpl := textTemplates.Lookup(m.TemplateName + ".txt"); tmpl != nil {
		if err := tmpl.Execute(&buff, m.TemplateData); err != nil {
			return errors.Wrapf(err, "rendering %s.txt", m.TemplateName)
		}
		m.TextContent = buff.String()
	}

	if tmpl := htmlTemplates.Lookup(m.TemplateName + ".gohtml"); tmpl != nil {
		buff.Reset()
		if err := tmpl.Execute(&buff, m.TemplateData); err != nil {
			return errors.Wrapf(err, "rendering %s.gohtml", m.TemplateName)
		}
		m.HTMLContent = buff.String()
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }

package emailsvc

import (
	"bytes"
	"log"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/nabha/core"
	logsvc "github.com/trezcool/nabha/services/logger"
)

func TestConsoleService_SendMessages(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewConsoleServiceMock(conf, logsvc.NewNopLogger())

	svc.SendMessages(
		&core.EmailMessage{To: []mail.Address{{Address: "t1@school.in"}}, Subject: "plain", BodyStr: "hello"},
		&core.EmailMessage{Subject: "no recipient", BodyStr: "dropped"},
		&core.EmailMessage{
			To:           []mail.Address{{Name: "Teacher", Address: "t2@school.in"}},
			Subject:      "alert",
			TemplateName: "emergency_alert",
			TemplateData: struct {
				StudentName string
				Message     string
				CreatedAt   time.Time
			}{"Asha", "I need help", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		},
	)

	sent := svc.SentMessages()
	require.Len(t, sent, 2)
	assert.Equal(t, "hello", sent[0].TextContent)
	assert.Contains(t, sent[1].TextContent, "Emergency alert from Asha")
	assert.Contains(t, sent[1].TextContent, "2024-03-01 10:00 UTC")
	assert.Contains(t, sent[1].HTMLContent, "<p>I need help</p>")
}

func TestConsoleService_output(t *testing.T) {
	var buf bytes.Buffer
	conf := core.NewTestConfig()
	svc := NewConsoleService(log.New(&buf, "", 0), conf, logsvc.NewNopLogger())
	svc.sync = true

	svc.SendMessages(&core.EmailMessage{To: []mail.Address{{Address: "t1@school.in"}}, Subject: "plain", BodyStr: "hello"})

	out := buf.String()
	assert.Contains(t, out, "Subject: [Nabha] plain")
	assert.Contains(t, out, "To: <t1@school.in>")
	assert.True(t, strings.Contains(out, "hello"))
}

// Package mail delivers quiz result emails over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	gomail "github.com/wneessen/go-mail"

	"github.com/quizforge/quizforge/internal/config"
	"github.com/quizforge/quizforge/internal/quiz"
)

// ErrNotConfigured reports that no SMTP host is set. Callers skip email
// delivery instead of treating it as a failure.
var ErrNotConfigured = errors.New("mail: smtp not configured")

// Mailer delivers a graded submission to its owner.
type Mailer interface {
	SendResults(ctx context.Context, to string, sub quiz.Submission) error
}

// NewFromConfig returns an SMTP mailer when a host is configured and the
// noop mailer otherwise.
func NewFromConfig(cfg config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return NopMailer{}
	}
	return &SMTPMailer{cfg: cfg}
}

// NopMailer stands in when email is disabled.
type NopMailer struct{}

func (NopMailer) SendResults(context.Context, string, quiz.Submission) error {
	return ErrNotConfigured
}

type SMTPMailer struct{ cfg config.Config }

func NewSMTPMailer(cfg config.Config) *SMTPMailer { return &SMTPMailer{cfg: cfg} }

func (m *SMTPMailer) SendResults(ctx context.Context, to string, sub quiz.Submission) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.MailFrom); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	msg.Subject(fmt.Sprintf("Your %s quiz results: %d/%d", sub.Subject, sub.Score, sub.Total))

	body, err := renderResults(sub)
	if err != nil {
		return err
	}
	msg.SetBodyString(gomail.TypeTextPlain, body)

	opts := []gomail.Option{
		gomail.WithPort(m.cfg.SMTPPort),
		gomail.WithTimeout(m.cfg.MailTimeout),
	}
	if m.cfg.SMTPUser != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.SMTPUser),
			gomail.WithPassword(m.cfg.SMTPPass),
		)
	}
	client, err := gomail.NewClient(m.cfg.SMTPHost, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

var resultsTmpl = template.Must(template.New("results").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`You scored {{.Score}} out of {{.Total}} on your {{.Subject}} quiz.

{{range $i, $a := .Answers}}Q{{inc $i}}: {{if $a.Correct}}correct{{else}}wrong (correct answer: {{$a.CorrectAnswer}}){{end}}
{{end}}{{if .Suggestions}}
What to study next:
{{range .Suggestions}}  - {{.}}
{{end}}{{end}}`))

func renderResults(sub quiz.Submission) (string, error) {
	var b strings.Builder
	if err := resultsTmpl.Execute(&b, sub); err != nil {
		return "", fmt.Errorf("render results email: %w", err)
	}
	return b.String(), nil
}

// MockMailer records sends for tests.
type MockMailer struct {
	Err  error
	Sent []string // recipient addresses in send order
}

func (m *MockMailer) SendResults(_ context.Context, to string, _ quiz.Submission) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, to)
	return nil
}

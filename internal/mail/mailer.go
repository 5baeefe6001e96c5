package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"gaethering/internal/config"
	"gaethering/internal/middleware"
	"gaethering/internal/observability"
)

// Mailer sends transactional mail. The SMTP implementation is used in
// production; LogMailer stands in for development and tests.
type Mailer interface {
	SendAuthCode(ctx context.Context, to, code string) error
}

type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
	}
}

func (m *SMTPMailer) SendAuthCode(ctx context.Context, to, code string) error {
	subject := "가더링 이메일 인증 코드"
	body := fmt.Sprintf("인증 코드: %s\r\n\r\n이 코드는 곧 만료됩니다. 본인이 요청하지 않았다면 이 메일을 무시하세요.", code)

	msg := []byte("From: " + m.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" + body + "\r\n")

	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, msg); err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to send auth mail", "to", to, "error", err)
		observability.AuthMailsSent.WithLabelValues("error").Inc()
		return err
	}

	observability.AuthMailsSent.WithLabelValues("sent").Inc()
	return nil
}

// LogMailer logs the code instead of sending it. Used when SMTP is not
// configured so local sign-up flows stay testable end to end.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) SendAuthCode(ctx context.Context, to, code string) error {
	middleware.Logger.InfoContext(ctx, "auth mail (log only)", "to", to, "code", code)
	observability.AuthMailsSent.WithLabelValues("logged").Inc()
	return nil
}

package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"vetstudy-backend/internal/logger"
)

type EmailService struct {
	host        string
	port        string
	user        string
	pass        string
	from        string
	frontendURL string
	devMode     bool
	log         *logger.Logger
}

func NewEmailService(host, port, user, pass, from, frontendURL string, log *logger.Logger) *EmailService {
	devMode := host == "" || user == ""
	if devMode {
		log.Warn("email service running in dev mode, messages are logged instead of sent")
	}
	return &EmailService{
		host:        host,
		port:        port,
		user:        user,
		pass:        pass,
		from:        from,
		frontendURL: frontendURL,
		devMode:     devMode,
		log:         log,
	}
}

func (s *EmailService) SendPasswordResetEmail(to, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)

	subject := "Redefinição de senha - VetStudy"
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: 'Segoe UI', Arial, sans-serif; margin: 0; padding: 0; background-color: #f1f5f9;">
  <div style="max-width: 480px; margin: 40px auto; background: white; border-radius: 12px; overflow: hidden;">
    <div style="background: #0f766e; padding: 28px; text-align: center;">
      <h1 style="color: white; margin: 0; font-size: 22px;">VetStudy</h1>
    </div>
    <div style="padding: 28px;">
      <h2 style="margin: 0 0 16px; font-size: 19px; color: #1e293b;">Redefina sua senha</h2>
      <p style="color: #475569; font-size: 14px; line-height: 1.6;">
        Recebemos uma solicitação para redefinir a sua senha. Use o botão abaixo ou informe o código no aplicativo.
      </p>
      <a href="%s" style="display: inline-block; background: #0f766e; color: white; text-decoration: none; padding: 12px 28px; border-radius: 8px; font-weight: 600; font-size: 14px;">
        Redefinir senha
      </a>
      <p style="color: #64748b; font-size: 12px; margin: 20px 0 0; word-break: break-all;">Código: %s</p>
      <p style="color: #94a3b8; font-size: 12px; margin: 16px 0 0;">
        Se você não fez esta solicitação, ignore este e-mail. O código expira em 1 hora.
      </p>
    </div>
  </div>
</body>
</html>`, resetURL, token)

	return s.sendHTML(to, subject, body)
}

func (s *EmailService) sendHTML(to, subject, htmlBody string) error {
	if s.devMode {
		s.log.Info("dev email", "to", to, "subject", subject, "body", htmlBody)
		return nil
	}

	headers := []string{
		fmt.Sprintf("From: %s", s.from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}

	message := strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody

	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.Info("email sent", "to", to, "subject", subject)
	return nil
}

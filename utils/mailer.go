package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"

	"tribeconnect/config"
)

type EmailData struct {
	Subject   string
	To        []string
	Template  string
	Data      interface{}
	Year      int
	FromName  string
	FromEmail string
}

// Embedded email templates
var emailTemplates = map[string]string{
	"circle_invite": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .button { display: inline-block; padding: 10px 20px; background-color: #3498db; color: white; text-decoration: none; border-radius: 4px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>You're invited to a circle</h2>
    </div>

    <div class="content">
        <p>Hello,</p>
        <p>You've been invited to join the circle <strong>{{.CircleName}}</strong> on TribeConnect.</p>
        <p><a class="button" href="{{.InviteLink}}">Accept your invite</a></p>
        <p>Or paste this link into your browser: {{.InviteLink}}</p>
    </div>

    <div class="footer">
        <p>If you didn't expect this invitation, you can safely ignore this email.</p>
        <p>© {{.Year}} TribeConnect. All rights reserved.</p>
    </div>
</body>
</html>`,

	"otp": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .otp-code { font-size: 24px; font-weight: bold; color: #3498db; margin: 20px 0; text-align: center; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Your Verification Code</h2>
    </div>

    <div class="content">
        <p>Hello,</p>
        <p>Here is your one-time verification code:</p>

        <div class="otp-code">{{.OTP}}</div>

        <p>This code will expire in 15 minutes. Please don't share this code with anyone.</p>
    </div>

    <div class="footer">
        <p>If you didn't request this code, you can safely ignore this email.</p>
        <p>© {{.Year}} TribeConnect. All rights reserved.</p>
    </div>
</body>
</html>`,

	"password_reset_otp": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .otp-code { font-size: 24px; font-weight: bold; color: #3498db; margin: 20px 0; text-align: center; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Password Reset Request</h2>
    </div>

    <div class="content">
        <p>Hello,</p>
        <p>We received a request to reset your password. Here is your verification code:</p>

        <div class="otp-code">{{.OTP}}</div>

        <p>This code will expire in 15 minutes. If you didn't request a password reset, please ignore this email.</p>
    </div>

    <div class="footer">
        <p>For security reasons, don't share this code with anyone.</p>
        <p>© {{.Year}} TribeConnect. All rights reserved.</p>
    </div>
</body>
</html>`,
}

func SendEmail(data EmailData) error {
	if config.AppConfig.SMTPHost == "" {
		return fmt.Errorf("email configuration not initialized")
	}
	if data.FromEmail == "" {
		data.FromEmail = config.AppConfig.FromEmail
	}
	if data.FromName == "" {
		data.FromName = config.AppConfig.FromName
	}
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}

	tmplContent, ok := emailTemplates[data.Template]
	if !ok {
		return fmt.Errorf("template '%s' not found", data.Template)
	}

	tmpl, err := template.New("email").Parse(tmplContent)
	if err != nil {
		return fmt.Errorf("error parsing template: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data.Data); err != nil {
		return fmt.Errorf("error executing template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", data.FromName, data.FromEmail))
	m.SetHeader("To", data.To...)
	m.SetHeader("Subject", data.Subject)
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
	)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}

	return nil
}

// InviteLink builds the join URL an invitee clicks. Origin overrides the
// configured app URL so invites sent from a staging frontend link back to
// that frontend.
func InviteLink(token, origin string) string {
	base := config.AppConfig.AppURL
	if origin != "" {
		base = origin
	}
	return fmt.Sprintf("%s/join-circle?token=%s", base, token)
}

// SendCircleInviteEmail sends the join-link email for a circle invite.
func SendCircleInviteEmail(to, circleName, token, origin string) error {
	data := EmailData{
		Subject:  fmt.Sprintf("Invite to join %q on TribeConnect", circleName),
		To:       []string{to},
		Template: "circle_invite",
		Data: struct {
			Subject    string
			CircleName string
			InviteLink string
			Year       int
		}{
			Subject:    "Circle Invitation",
			CircleName: circleName,
			InviteLink: InviteLink(token, origin),
			Year:       time.Now().Year(),
		},
	}

	return SendEmail(data)
}

// SendOTPEmail sends an account verification code.
func SendOTPEmail(to, otp string) error {
	data := EmailData{
		Subject:  "Your Verification Code",
		To:       []string{to},
		Template: "otp",
		Data: struct {
			Subject string
			OTP     string
			Year    int
		}{
			Subject: "Your Verification Code",
			OTP:     otp,
			Year:    time.Now().Year(),
		},
	}

	return SendEmail(data)
}

// SendPasswordResetOTPEmail sends a password reset code.
func SendPasswordResetOTPEmail(to, otp string) error {
	data := EmailData{
		Subject:  "Password Reset Verification Code",
		To:       []string{to},
		Template: "password_reset_otp",
		Data: struct {
			Subject string
			OTP     string
			Year    int
		}{
			Subject: "Password Reset Request",
			OTP:     otp,
			Year:    time.Now().Year(),
		},
	}

	return SendEmail(data)
}

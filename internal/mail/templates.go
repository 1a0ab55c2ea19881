package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

const (
	verificationSubject  = "Verify Your Email - Personal Finance Tracker"
	passwordResetSubject = "Reset Your Password - Personal Finance Tracker"
)

var verificationTmpl = template.Must(template.New("verification").Parse(`<h2>Email Verification</h2>
<p>Thank you for registering with Personal Finance Tracker.</p>
<p>Please click the link below to verify your email address. This link is valid for {{.Validity}}:</p>
<p><a href="{{.Link}}" style="color: #0066cc; font-weight: bold; text-decoration: none;">Verify Email Address</a></p>
<hr>
<p style="font-size:0.9em; color:#555;">If the link has expired you can request a new one here:</p>
<p><a href="{{.ResendLink}}" style="color: #0066cc;">Request a New Verification Link</a></p>
<p style="font-size:0.9em; color:#555;">If you did not register for an account, please ignore this email.</p>`))

var passwordResetTmpl = template.Must(template.New("reset").Parse(`<h2>Password Reset Request</h2>
<p>We received a request to reset your password for your Personal Finance Tracker account.</p>
<p>Click the link below to set a new password (link valid for {{.Validity}}):</p>
<p><a href="{{.Link}}" style="color: #0066cc; font-weight: bold; text-decoration: none;">Reset Password</a></p>
<p>If you didn't request this, you can safely ignore this email.</p>`))

type linkData struct {
	Link       string
	ResendLink string
	Validity   string
}

// VerificationMessage builds the mail carrying an email verification link
func VerificationMessage(baseURL, to, token, validity string) (Message, error) {
	base := strings.TrimRight(baseURL, "/")
	data := linkData{
		Link:       base + "/verify?token=" + url.QueryEscape(token),
		ResendLink: base + "/resend-verification?email=" + url.QueryEscape(to),
		Validity:   validity,
	}
	return render(verificationTmpl, to, verificationSubject, data)
}

// PasswordResetMessage builds the mail carrying a password reset link
func PasswordResetMessage(baseURL, to, token, validity string) (Message, error) {
	data := linkData{
		Link:     strings.TrimRight(baseURL, "/") + "/reset-password?token=" + url.QueryEscape(token),
		Validity: validity,
	}
	return render(passwordResetTmpl, to, passwordResetSubject, data)
}

func render(t *template.Template, to, subject string, data linkData) (Message, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return Message{To: to, Subject: subject, HTML: buf.String()}, nil
}

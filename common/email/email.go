package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"os"
	"strings"
	"time"
)

// ============================================================
// CONFIGURATION & SERVICE
// ============================================================

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

func DefaultConfig() *Config {
	return &Config{
		Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		Port:     getEnv("SMTP_PORT", "587"),
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "noreply@blooddonor.org"),
		FromName: getEnv("SMTP_FROM_NAME", "Blood Donor Registry"),
	}
}

// EmailService delivers registry mail over SMTP. When no credentials are
// configured it runs in dev mode and drops messages instead of sending.
type EmailService struct {
	config  *Config
	devMode bool
}

func NewEmailService(config *Config) *EmailService {
	if config == nil {
		config = DefaultConfig()
	}
	devMode := config.Username == "" || config.Password == ""
	return &EmailService{
		config:  config,
		devMode: devMode,
	}
}

// DevMode reports whether the service drops mail instead of sending
func (s *EmailService) DevMode() bool {
	return s.devMode
}

// ============================================================
// DATA STRUCTURES
// ============================================================

type EmailMessage struct {
	To          []string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

type Attachment struct {
	Filename string
	Data     []byte
	MimeType string
}

type DonorCardEmailData struct {
	DonorEmail    string
	DonorName     string
	BloodGroup    string
	City          string
	QRCodeBase64  string
	PDFAttachment []byte
	PDFFilename   string
}

// ============================================================
// SENDING ENGINE
// ============================================================

func (s *EmailService) Send(msg EmailMessage) error {
	if s.devMode {
		return nil
	}
	addr := fmt.Sprintf("%s:%s", s.config.Host, s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	var body bytes.Buffer
	boundary := fmt.Sprintf("boundary_%d", time.Now().UnixNano())
	body.WriteString(fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: multipart/mixed; boundary=%s\r\n\r\n", s.config.FromName, s.config.From, strings.Join(msg.To, ", "), msg.Subject, boundary))
	body.WriteString(fmt.Sprintf("--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, msg.HTMLBody))
	for _, att := range msg.Attachments {
		body.WriteString(fmt.Sprintf("--%s\r\nContent-Type: %s; name=\"%s\"\r\nContent-Transfer-Encoding: base64\r\nContent-Disposition: attachment; filename=\"%s\"\r\n\r\n%s\r\n", boundary, att.MimeType, att.Filename, att.Filename, base64.StdEncoding.EncodeToString(att.Data)))
	}
	body.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return smtp.SendMail(addr, auth, s.config.From, msg.To, body.Bytes())
}

// ============================================================
// TEMPLATE BUILDERS
// ============================================================

// SendOTPEmail sends a one-time passcode. The subject line depends on the
// purpose: REGISTRATION, REPORT_CONFIRMATION or STATUS_UPDATE.
func (s *EmailService) SendOTPEmail(to, otp, purpose string) error {
	var subject, title string
	switch purpose {
	case "REGISTRATION":
		subject, title = "Blood Donor Registry - Verify Your Email", "WELCOME, DONOR"
	case "REPORT_CONFIRMATION":
		subject, title = "Blood Donor Registry - Confirm Report", "CONFIRM REPORT"
	case "STATUS_UPDATE":
		subject, title = "Blood Donor Registry - Status Update", "STATUS UPDATE"
	default:
		subject, title = "Blood Donor Registry - Verification Code", "VERIFICATION CODE"
	}
	html := fmt.Sprintf(`<!DOCTYPE html><html><body style="margin:0;padding:0;font-family:Arial;background-color:#f5f5f5;"><table width="100%%" border="0" cellspacing="0" cellpadding="0" bgcolor="#f5f5f5"><tr><td align="center" style="padding:40px 0;"><table width="600" border="0" cellspacing="0" cellpadding="0" bgcolor="#ffffff" style="border-radius:16px;overflow:hidden;box-shadow:0 4px 15px rgba(0,0,0,0.1);">
    <tr><td height="8" bgcolor="#C62828" style="line-height:8px;font-size:8px;">&nbsp;</td></tr>
    <tr><td align="left" style="padding:35px 40px;"><h1 style="margin:0;color:#C62828;font-size:24px;font-weight:bold;">BLOOD DONOR REGISTRY</h1></td></tr>
    <tr><td style="padding:10px 40px 40px 40px;"><h2 style="color:#000000;margin:0 0 10px 0;">%s</h2><p>Your OTP code is below. It expires in 10 minutes:</p><table width="100%%" bgcolor="#fafafa" style="border:2px dashed #C62828;border-radius:8px;"><tr><td align="center" style="padding:25px;"><p style="font-size:42px;font-weight:bold;color:#C62828;letter-spacing:10px;margin:0;">%s</p></td></tr></table><p style="margin-top:25px;color:#999999;font-size:13px;">Please do not share this code with anyone. If you did not request this, ignore this email.</p></td></tr><tr><td align="center" bgcolor="#2c2c2c" style="padding:20px;color:#999999;font-size:12px;">Blood Donor Registry</td></tr></table></td></tr></table></body></html>`, title, otp)
	return s.Send(EmailMessage{To: []string{to}, Subject: subject, HTMLBody: html})
}

// SendDonorCardEmail sends the welcome email with the donor card PDF after
// a completed registration.
func (s *EmailService) SendDonorCardEmail(data DonorCardEmailData) error {
	qrBlock := ""
	if data.QRCodeBase64 != "" {
		qrBlock = fmt.Sprintf(`<table width="100%%" style="margin-bottom:20px;"><tr><td align="center" style="padding:10px;"><img src="%s" width="140" height="140" alt="Donor QR code"/></td></tr></table>`, data.QRCodeBase64)
	}
	html := fmt.Sprintf(`<!DOCTYPE html><html><body style="margin:0;padding:0;font-family:Arial,sans-serif;background-color:#f5f5f5;">
    <table width="100%%" border="0" cellspacing="0" cellpadding="0" bgcolor="#f5f5f5"><tr><td align="center" style="padding:40px 0;">
    <table width="600" border="0" cellspacing="0" cellpadding="0" bgcolor="#ffffff" style="border-radius:16px;overflow:hidden;box-shadow:0 4px 15px rgba(0,0,0,0.1);">
    <tr><td height="8" bgcolor="#C62828" style="line-height:8px;font-size:8px;">&nbsp;</td></tr>
    <tr><td align="left" style="padding:35px 40px;"><h1 style="margin:0;color:#C62828;font-size:24px;font-weight:bold;letter-spacing:1px;">BLOOD DONOR REGISTRY</h1></td></tr>
    <tr><td style="padding:10px 40px 40px 40px;"><p style="font-size:18px;color:#666666;margin:0 0 10px 0;">Registration complete</p>
    <h2 style="font-size:32px;font-weight:bold;color:#000000;margin:0 0 30px 0;line-height:1.2;">Thank you, %s</h2>
    <p>You are now a registered donor. Your donor card is attached to this email.</p>
    <table width="100%%" border="0" cellpadding="15" bgcolor="#fafafa" style="margin-bottom:20px;border-left:4px solid #C62828;">
    <tr><td><small style="color:#999999;text-transform:uppercase;">Blood Group</small><br/><strong style="color:#C62828;font-size:22px;">%s</strong></td></tr>
    <tr><td><small style="color:#999999;text-transform:uppercase;">City</small><br/><strong>%s</strong></td></tr>
    </table>
    %s
    <table width="100%%" bgcolor="#FFF8E1" style="border:1px solid #FFE082;border-radius:8px;margin-bottom:30px;"><tr><td style="padding:15px;"><strong>This email contains your donor card as a PDF.</strong> Present it when donating.</td></tr></table>
    </td></tr><tr><td align="center" bgcolor="#2c2c2c" style="padding:25px;"><p style="margin:0;font-size:12px;color:#999999;">Blood Donor Registry. Every drop counts.</p></td></tr></table></td></tr></table></body></html>`,
		data.DonorName, data.BloodGroup, data.City, qrBlock)
	msg := EmailMessage{To: []string{data.DonorEmail}, Subject: "Blood Donor Registry - Your Donor Card", HTMLBody: html}
	if len(data.PDFAttachment) > 0 {
		filename := data.PDFFilename
		if filename == "" {
			filename = "donor-card.pdf"
		}
		msg.Attachments = []Attachment{{Filename: filename, Data: data.PDFAttachment, MimeType: "application/pdf"}}
	}
	return s.Send(msg)
}

// SendReportNotification tells a donor that someone reported them as
// currently unavailable for donation.
func (s *EmailService) SendReportNotification(to, donorName, reporterName, reason string) error {
	if reporterName == "" {
		reporterName = "Anonymous"
	}
	html := fmt.Sprintf(`<p>Dear %s,</p>
<p>Someone has reported that you are currently unavailable for blood donation.</p>
<p><strong>Reporter:</strong> %s</p>
<p><strong>Reason:</strong> %s</p>
<p>If this is incorrect, please contact the admin immediately.</p>
<p>If you don't respond within 24 hours, your status will be automatically updated to 'Not Available'.</p>
<br>
<p>Thank you,<br>Blood Donor Team</p>`, donorName, reporterName, reason)
	return s.Send(EmailMessage{To: []string{to}, Subject: "Blood Donor Registry - Report Notification", HTMLBody: html})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

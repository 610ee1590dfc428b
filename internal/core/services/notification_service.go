package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"swadhrama-api/internal/adapters/persistence/models"
	"swadhrama-api/internal/config"
	"swadhrama-api/internal/core/domain"
	"swadhrama-api/internal/pkg/logger"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// ErrChannelNotConfigured is returned when no transport exists for a contact
var ErrChannelNotConfigured = errors.New("notification channel not configured")

// OTPSender delivers one-time codes out of band
type OTPSender interface {
	SendOTP(ctx context.Context, contact, code string, purpose domain.OTPPurpose) error
}

// BookingNotifier tells a member about a decision on their request
type BookingNotifier interface {
	NotifyBookingDecision(ctx context.Context, contact string, booking *models.BookingRequest) error
}

// mailSender is satisfied by *gomail.Dialer
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// smsSender is satisfied by the Twilio REST API service
type smsSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// NotificationService sends OTPs and booking updates by email (SMTP) or SMS (Twilio)
type NotificationService struct {
	mailer   mailSender
	mailFrom string
	sms      smsSender
	smsFrom  string
	// devEcho logs codes instead of failing when a channel is missing
	devEcho bool
}

// NewNotificationService creates a notification service from configuration
func NewNotificationService(cfg *config.Config) *NotificationService {
	s := &NotificationService{devEcho: cfg.IsDev()}

	if cfg.SMTP.Enabled() {
		s.mailer = gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
		s.mailFrom = cfg.SMTP.From
	}

	if cfg.Twilio.Enabled() {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.Twilio.AccountSID,
			Password: cfg.Twilio.AuthToken,
		})
		s.sms = client.Api
		s.smsFrom = cfg.Twilio.FromNumber
	}

	return s
}

// otpSubject returns the email subject for a purpose
func otpSubject(purpose domain.OTPPurpose) string {
	switch purpose {
	case domain.PurposeRegistration:
		return "Swadhrama - Verify Your Email"
	case domain.PurposePasswordReset:
		return "Swadhrama - Reset Your Password"
	default:
		return "Swadhrama - Your Login OTP"
	}
}

var otpEmailTemplate = template.Must(template.New("otp").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 480px; margin: 0 auto; padding: 32px; background: #fff8f0; border-radius: 12px;">
  <h2 style="color: #e65100; text-align: center;">🙏 Swadhrama Parirakshna</h2>
  <p style="text-align: center; color: #555;">Your verification code is:</p>
  <div style="text-align: center; margin: 24px 0;">
    <span style="font-size: 36px; font-weight: bold; letter-spacing: 8px; color: #e65100; background: #fff; padding: 12px 24px; border-radius: 8px; border: 2px dashed #e65100;">{{.Code}}</span>
  </div>
  <p style="text-align: center; color: #888; font-size: 14px;">
    This code expires in {{.Minutes}} minutes. Do not share it with anyone.
  </p>
</div>
`))

// renderOTPEmail renders the OTP email body. The expiry is derived from domain.OTPExpiry.
func renderOTPEmail(code string) (string, error) {
	var buf bytes.Buffer
	err := otpEmailTemplate.Execute(&buf, struct {
		Code    string
		Minutes int
	}{
		Code:    code,
		Minutes: int(domain.OTPExpiry.Minutes()),
	})
	return buf.String(), err
}

// otpSMS renders the OTP text message
func otpSMS(code string, purpose domain.OTPPurpose) string {
	return fmt.Sprintf("Swadhrama: %s is your %s code. It expires in %d minutes. Do not share it with anyone.",
		code, otpPurposeLabel(purpose), int(domain.OTPExpiry.Minutes()))
}

func otpPurposeLabel(purpose domain.OTPPurpose) string {
	switch purpose {
	case domain.PurposeRegistration:
		return "verification"
	case domain.PurposePasswordReset:
		return "password reset"
	default:
		return "login"
	}
}

// SendOTP delivers a code to an email address or phone number
func (s *NotificationService) SendOTP(ctx context.Context, contact, code string, purpose domain.OTPPurpose) error {
	if domain.IsEmail(contact) {
		body, err := renderOTPEmail(code)
		if err != nil {
			return err
		}
		return s.sendEmail(ctx, contact, otpSubject(purpose), body, code)
	}
	return s.sendSMS(ctx, contact, otpSMS(code, purpose), code)
}

// NotifyBookingDecision informs the member that a request was accepted or rejected
func (s *NotificationService) NotifyBookingDecision(ctx context.Context, contact string, booking *models.BookingRequest) error {
	service := domain.ServiceType(booking.ServiceType).Label()
	if booking.ServiceName != "" {
		service = booking.ServiceName
	}
	text := fmt.Sprintf("Your %s request for %s at %s has been %s.",
		service, booking.RequestedDate, booking.RequestedTime, booking.Status)

	if domain.IsEmail(contact) {
		subject := fmt.Sprintf("Swadhrama - Booking %s", booking.Status)
		return s.sendEmail(ctx, contact, subject, "<p>"+template.HTMLEscapeString(text)+"</p>", "")
	}
	return s.sendSMS(ctx, contact, "Swadhrama: "+text, "")
}

func (s *NotificationService) sendEmail(ctx context.Context, to, subject, html, code string) error {
	if s.mailer == nil {
		return s.unconfigured(ctx, "email", to, code)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.mailFrom, "Swadhrama")
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	if err := s.mailer.DialAndSend(m); err != nil {
		logger.Error(ctx, "Failed to send email", zap.String("to", to), zap.Error(err))
		return err
	}

	logger.Info(ctx, "Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func (s *NotificationService) sendSMS(ctx context.Context, to, body, code string) error {
	if s.sms == nil {
		return s.unconfigured(ctx, "sms", to, code)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(s.smsFrom)
	params.SetTo(to)
	params.SetBody(body)

	resp, err := s.sms.CreateMessage(params)
	if err != nil {
		logger.Error(ctx, "Failed to send SMS", zap.String("to", to), zap.Error(err))
		return err
	}
	if resp != nil && resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		msg := ""
		if resp.ErrorMessage != nil {
			msg = *resp.ErrorMessage
		}
		return fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, msg)
	}

	logger.Info(ctx, "SMS sent", zap.String("to", to))
	return nil
}

func (s *NotificationService) unconfigured(ctx context.Context, channel, to, code string) error {
	if !s.devEcho {
		return fmt.Errorf("%w: %s", ErrChannelNotConfigured, channel)
	}
	fields := []zap.Field{zap.String("channel", channel), zap.String("to", to)}
	if code != "" {
		fields = append(fields, zap.String("code", code))
	}
	logger.Warn(ctx, "Notification channel not configured, message not sent", fields...)
	return nil
}

package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// CancellationNotice carries everything a student needs to know about a
// cancelled course.
type CancellationNotice struct {
	RecipientEmail    string
	RecipientName     string
	CourseName        string
	CourseDescription string
	TeacherName       string
}

// Mailer delivers cancellation notices. Delivery failures are the caller's to
// log; they never block the workflow that triggered them.
type Mailer interface {
	SendCancellation(ctx context.Context, notice CancellationNotice) error
}

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// SendGridMailer sends notices through the SendGrid v3 API.
type SendGridMailer struct {
	key  string
	from *sgmail.Email
}

// NewSendGrid constructs a SendGrid-backed mailer.
func NewSendGrid(key, fromName, fromAddress string) *SendGridMailer {
	return &SendGridMailer{
		key:  key,
		from: sgmail.NewEmail(fromName, fromAddress),
	}
}

// SendCancellation delivers a single cancellation notice.
func (m *SendGridMailer) SendCancellation(ctx context.Context, notice CancellationNotice) error {
	p := sgmail.NewPersonalization()
	p.Subject = fmt.Sprintf("Course cancelled: %s", notice.CourseName)
	p.AddTos(sgmail.NewEmail(notice.RecipientName, notice.RecipientEmail))

	msg := sgmail.NewV3Mail()
	msg.SetFrom(m.from)
	msg.AddPersonalizations(p)
	msg.AddContent(sgmail.NewContent("text/plain", noticeBody(notice)))

	req := sendgrid.GetRequest(m.key, sendGridEndpoint, sendGridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(msg)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid responded %d", res.StatusCode)
	}
	return nil
}

// ConsoleMailer writes notices to the log. Used in development and tests.
type ConsoleMailer struct {
	logger *zap.Logger
}

// NewConsole constructs a console mailer.
func NewConsole(logger *zap.Logger) *ConsoleMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleMailer{logger: logger}
}

// SendCancellation logs the notice instead of delivering it.
func (m *ConsoleMailer) SendCancellation(_ context.Context, notice CancellationNotice) error {
	m.logger.Info("cancellation notice",
		zap.String("to", notice.RecipientEmail),
		zap.String("course", notice.CourseName),
		zap.String("teacher", notice.TeacherName),
	)
	return nil
}

func noticeBody(notice CancellationNotice) string {
	return fmt.Sprintf(
		"Hello %s,\n\nThe course %q taught by %s has been cancelled and removed from the platform.\n\nCourse description: %s\n\nWe are sorry for the inconvenience.\n",
		notice.RecipientName,
		notice.CourseName,
		notice.TeacherName,
		notice.CourseDescription,
	)
}

package domain

// Mailer sends an email. Implementations may use AWS SES or be no-ops.
type Mailer interface {
	Send(to, subject, html, text string) error
}

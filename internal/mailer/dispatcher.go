package mailer

import (
	"errors"
	"log"

	"github.com/munhub-dev/munhub/internal/models"
	"gorm.io/gorm"
)

var (
	ErrTemplateNotFound = errors.New("email template not found")
	ErrNotConfigured    = errors.New("mail transport is not configured")
)

// Dispatcher renders named templates from the database and hands them to
// the transport. A nil transport means mail is configured off.
type Dispatcher struct {
	conn   *gorm.DB
	mailer Mailer
}

func NewDispatcher(conn *gorm.DB, mailer Mailer) *Dispatcher {
	return &Dispatcher{conn: conn, mailer: mailer}
}

func (d *Dispatcher) Configured() bool {
	return d.mailer != nil
}

// SendTemplate renders the active template by name and sends it to one
// recipient. Inactive or missing templates fail with ErrTemplateNotFound.
func (d *Dispatcher) SendTemplate(name, recipient string, vars map[string]string) error {
	if d.mailer == nil {
		return ErrNotConfigured
	}

	var tmpl models.EmailTemplate

	err := d.conn.Where("name = ? AND active = ?", name, true).First(&tmpl).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}

	return d.mailer.Send(Message{
		To:       recipient,
		Subject:  Render(tmpl.Subject, vars),
		HTMLBody: Render(tmpl.HTMLBody, vars),
		TextBody: Render(tmpl.TextBody, vars),
	})
}

// BulkResult tallies a sequential bulk send.
type BulkResult struct {
	Sent   int               `json:"sent"`
	Failed int               `json:"failed"`
	Errors map[string]string `json:"errors,omitempty"`
}

// SendBulk sends the template to each recipient in turn, continuing past
// individual failures.
func (d *Dispatcher) SendBulk(name string, recipients []string, vars map[string]string) BulkResult {
	result := BulkResult{Errors: make(map[string]string)}

	for _, recipient := range recipients {
		if err := d.SendTemplate(name, recipient, vars); err != nil {
			log.Printf("Failed to send %q to %s: %v", name, recipient, err)
			result.Failed++
			result.Errors[recipient] = err.Error()
			continue
		}
		result.Sent++
	}

	if len(result.Errors) == 0 {
		result.Errors = nil
	}

	return result
}

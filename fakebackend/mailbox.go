package fakebackend

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type MailKind string

const (
	MailWelcome       MailKind = "welcome"        // Carries the initial password
	MailPasswordReset MailKind = "password-reset" // Carries the reset token
)

// Mail is a message the backend would have sent.
type Mail struct {
	To     string
	Kind   MailKind
	Secret string
	SentAt time.Time
}

// Mailbox records outgoing mail instead of sending it.
type Mailbox struct {
	lock sync.RWMutex
	mail []Mail
}

func NewMailbox() *Mailbox {
	return &Mailbox{}
}

func (m *Mailbox) send(mail Mail) {
	m.lock.Lock()
	defer m.lock.Unlock()

	mail.SentAt = time.Now()
	m.mail = append(m.mail, mail)
	log.Info().Str("to", mail.To).Str("kind", string(mail.Kind)).Str("secret", mail.Secret).Msg("mail sent")
}

// Last returns the most recent mail of kind sent to the address.
func (m *Mailbox) Last(to string, kind MailKind) (Mail, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	for i := len(m.mail) - 1; i >= 0; i-- {
		if strings.EqualFold(m.mail[i].To, to) && m.mail[i].Kind == kind {
			return m.mail[i], true
		}
	}
	return Mail{}, false
}

func (m *Mailbox) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.mail)
}

// Package otp implements the one-time-password gate in front of quotation
// generation: a code is mailed to the customer and the quotation endpoints
// stay closed until the code is verified.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/biocule/quotation-api/logging"
)

const (
	codeLength  = 6
	maxAttempts = 5
)

// Sender delivers an OTP code to an address. Production wires the external
// mail service here; LogSender ships for development.
type Sender interface {
	SendCode(email, name, code string) error
}

// LogSender writes the code to the application log instead of sending mail.
type LogSender struct{}

// SendCode logs the code.
func (LogSender) SendCode(email, name, code string) error {
	logging.Info("OTP code issued", "email", email, "name", name, "code", code)
	return nil
}

type pendingCode struct {
	code      string
	expiresAt time.Time
	attempts  int
}

// Manager issues and verifies codes, one pending code per email address.
type Manager struct {
	sender Sender
	ttl    time.Duration

	mu       sync.Mutex
	pending  map[string]*pendingCode
	verified map[string]bool
}

// NewManager creates a manager issuing codes valid for ttl.
func NewManager(sender Sender, ttl time.Duration) *Manager {
	return &Manager{
		sender:   sender,
		ttl:      ttl,
		pending:  make(map[string]*pendingCode),
		verified: make(map[string]bool),
	}
}

// Send issues a fresh code for the address and dispatches it. A new send
// replaces any earlier pending code and resets verification.
func (m *Manager) Send(email, name string) error {
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate otp code: %w", err)
	}

	email = normalizeEmail(email)

	m.mu.Lock()
	m.pending[email] = &pendingCode{
		code:      code,
		expiresAt: time.Now().Add(m.ttl),
	}
	delete(m.verified, email)
	m.mu.Unlock()

	if err := m.sender.SendCode(email, name, code); err != nil {
		return fmt.Errorf("dispatch otp code: %w", err)
	}

	return nil
}

// Verify checks a submitted code. Wrong codes count against the attempt cap;
// expired or exhausted codes require a fresh Send.
func (m *Manager) Verify(email, code string) bool {
	email = normalizeEmail(email)

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pending[email]
	if !ok {
		return false
	}

	if time.Now().After(p.expiresAt) {
		delete(m.pending, email)
		return false
	}

	p.attempts++
	if p.attempts > maxAttempts {
		delete(m.pending, email)
		logging.Warn("OTP attempt cap reached", "email", email)
		return false
	}

	if p.code != code {
		return false
	}

	delete(m.pending, email)
	m.verified[email] = true
	return true
}

// IsVerified reports whether the address has passed verification.
func (m *Manager) IsVerified(email string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verified[normalizeEmail(email)]
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateCode() (string, error) {
	var b strings.Builder
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%d", n.Int64())
	}
	return b.String(), nil
}

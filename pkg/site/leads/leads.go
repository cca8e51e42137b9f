// Package leads captures contact and partner submissions: one durable row
// per accepted submission, mirrored best-effort to the spreadsheet webhook.
package leads

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Contact is an audit-request submission from the contact form.
type Contact struct {
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	City         string    `json:"city"`
	Industry     string    `json:"industry"`
	Company      string    `json:"company"`
	Website      string    `json:"website,omitempty"`
	Interest     string    `json:"interest"`
	ContactTime  string    `json:"contact_time,omitempty"`
	Requirements string    `json:"requirements"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// Partner is a partner-program application. Status is always "pending" on
// intake; review happens elsewhere.
type Partner struct {
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	City      string    `json:"city"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	AppliedAt time.Time `json:"applied_at"`
}

// ValidationError reports a missing or malformed submission field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StorageError wraps a failed durable insert. Op names the insert that
// failed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("leads: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store persists submissions. Implementations must write exactly one row per
// call or return an error.
type Store interface {
	InsertContact(ctx context.Context, c Contact) error
	InsertPartner(ctx context.Context, p Partner) error
}

// Mirror forwards an accepted submission to the spreadsheet sync webhook.
type Mirror interface {
	Send(ctx context.Context, sheetType string, payload any) error
}

type Service struct {
	store         Store
	mirror        Mirror
	logger        *slog.Logger
	mirrorTimeout time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
	wg       sync.WaitGroup
	nowFn    func() time.Time
}

// NewService wires the capture pipeline. mirror may be nil when no sync
// webhook is configured.
func NewService(store Store, mirror Mirror, logger *slog.Logger, mirrorTimeout time.Duration) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if mirrorTimeout <= 0 {
		mirrorTimeout = 10 * time.Second
	}
	return &Service{
		store:         store,
		mirror:        mirror,
		logger:        logger,
		mirrorTimeout: mirrorTimeout,
		inflight:      make(map[string]struct{}),
		nowFn:         time.Now,
	}
}

// SubmitContact validates and persists a contact lead. The mirror call runs
// in the background after the insert commits; its outcome never changes the
// result.
func (s *Service) SubmitContact(ctx context.Context, c Contact) (Contact, error) {
	if err := validateContact(c); err != nil {
		return Contact{}, err
	}
	if c.SubmittedAt.IsZero() {
		c.SubmittedAt = s.nowFn().UTC()
	}
	if err := s.store.InsertContact(ctx, c); err != nil {
		return Contact{}, &StorageError{Op: "insert_contact", Err: err}
	}
	s.mirrorAsync("contact", c)
	return c, nil
}

// SubmitPartner validates and persists a partner application.
func (s *Service) SubmitPartner(ctx context.Context, p Partner) (Partner, error) {
	if err := validatePartner(p); err != nil {
		return Partner{}, err
	}
	p.Status = "pending"
	if p.AppliedAt.IsZero() {
		p.AppliedAt = s.nowFn().UTC()
	}
	if err := s.store.InsertPartner(ctx, p); err != nil {
		return Partner{}, &StorageError{Op: "insert_partner", Err: err}
	}
	s.mirrorAsync("partner", p)
	return p, nil
}

// Begin claims an idempotency token for the duration of a submission.
// Returns false when the token is already in flight.
func (s *Service) Begin(token string) bool {
	if token == "" {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.inflight[token]; dup {
		return false
	}
	s.inflight[token] = struct{}{}
	return true
}

// End releases a token claimed with Begin.
func (s *Service) End(token string) {
	if token == "" {
		return
	}
	s.mu.Lock()
	delete(s.inflight, token)
	s.mu.Unlock()
}

// Wait blocks until background mirror deliveries finish. Used on shutdown
// and in tests.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) mirrorAsync(sheetType string, payload any) {
	if s.mirror == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// Detached from the request context: the insert already succeeded
		// and the caller must not wait on (or learn about) the mirror.
		ctx, cancel := context.WithTimeout(context.Background(), s.mirrorTimeout)
		defer cancel()
		if err := s.mirror.Send(ctx, sheetType, payload); err != nil {
			s.logger.Warn("sheet mirror delivery failed", "sheet_type", sheetType, "error", err)
		}
	}()
}

func validateContact(c Contact) error {
	required := []struct{ field, value string }{
		{"full_name", c.FullName},
		{"email", c.Email},
		{"phone", c.Phone},
		{"city", c.City},
		{"industry", c.Industry},
		{"company", c.Company},
		{"interest", c.Interest},
		{"requirements", c.Requirements},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Message: "is required"}
		}
	}
	if !strings.Contains(c.Email, "@") {
		return &ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	return nil
}

func validatePartner(p Partner) error {
	required := []struct{ field, value string }{
		{"full_name", p.FullName},
		{"email", p.Email},
		{"phone", p.Phone},
		{"city", p.City},
		{"category", p.Category},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Message: "is required"}
		}
	}
	if !strings.Contains(p.Email, "@") {
		return &ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	return nil
}

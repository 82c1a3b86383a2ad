// Package usecases - contact.go validates and forwards contact submissions.
package usecases

import (
	"context"
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hansgunawan/portfolio/internal/domain/entities"
	"github.com/hansgunawan/portfolio/internal/domain/ports"
)

// ValidationError lists every contact field that failed its constraint.
type ValidationError struct {
	Fields []entities.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// fieldMessages maps field and failed tag to the user-facing message.
var fieldMessages = map[string]map[string]string{
	"name": {
		"min": "Name is required",
		"max": "Name must be less than 100 characters",
	},
	"email": {
		"required": "Please enter a valid email address",
		"email":    "Please enter a valid email address",
	},
	"message": {
		"min": "Message must be at least 10 characters",
		"max": "Message must be less than 1000 characters",
	},
}

// ContactService accepts contact form submissions.
// Both store and mailer are optional; with neither, submissions are logged.
type ContactService struct {
	validate *validator.Validate
	store    ports.ContactStore
	mailer   ports.Mailer
	now      func() time.Time
}

// NewContactService creates a ContactService with injected dependencies.
func NewContactService(store ports.ContactStore, mailer ports.Mailer) *ContactService {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &ContactService{
		validate: v,
		store:    store,
		mailer:   mailer,
		now:      time.Now,
	}
}

// Validate checks the submission against the form constraints.
func (s *ContactService) Validate(in entities.ContactInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		msg := fieldMessages[fe.Field()][fe.Tag()]
		if msg == "" {
			msg = fmt.Sprintf("failed %s constraint", fe.Tag())
		}
		out.Fields = append(out.Fields, entities.FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}

// Submit validates, stamps and delivers a submission.
func (s *ContactService) Submit(ctx context.Context, in entities.ContactInput) (entities.ContactMessage, error) {
	if err := s.Validate(in); err != nil {
		return entities.ContactMessage{}, err
	}

	msg := entities.ContactMessage{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Email:     in.Email,
		Message:   in.Message,
		CreatedAt: s.now(),
	}

	if s.store != nil {
		if err := s.store.Create(ctx, msg); err != nil {
			return entities.ContactMessage{}, fmt.Errorf("storing contact message: %w", err)
		}
	}

	if s.mailer == nil {
		log.Printf("[contact] submission %s from %s <%s>", msg.ID, msg.Name, msg.Email)
		return msg, nil
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return entities.ContactMessage{}, fmt.Errorf("sending contact email: %w", err)
	}
	log.Printf("[contact] delivered %s from %s", msg.ID, msg.Email)
	return msg, nil
}

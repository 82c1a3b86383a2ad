package usecases

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hansgunawan/portfolio/internal/domain/entities"
)

func validContact() entities.ContactInput {
	return entities.ContactInput{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Message: "Hello, I'd like to talk about a project.",
	}
}

func TestContactService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*entities.ContactInput)
		field   string
		message string
	}{
		{"empty name", func(in *entities.ContactInput) { in.Name = "" }, "name", "Name is required"},
		{"long name", func(in *entities.ContactInput) { in.Name = strings.Repeat("a", 101) }, "name", "Name must be less than 100 characters"},
		{"empty email", func(in *entities.ContactInput) { in.Email = "" }, "email", "Please enter a valid email address"},
		{"bad email", func(in *entities.ContactInput) { in.Email = "not-an-email" }, "email", "Please enter a valid email address"},
		{"short message", func(in *entities.ContactInput) { in.Message = strings.Repeat("m", 9) }, "message", "Message must be at least 10 characters"},
		{"long message", func(in *entities.ContactInput) { in.Message = strings.Repeat("m", 1001) }, "message", "Message must be less than 1000 characters"},
	}

	svc := NewContactService(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validContact()
			tt.mutate(&in)

			err := svc.Validate(in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(verr.Fields) != 1 {
				t.Fatalf("expected one field error, got %+v", verr.Fields)
			}
			if verr.Fields[0].Field != tt.field || verr.Fields[0].Message != tt.message {
				t.Errorf("got %+v, want %s: %s", verr.Fields[0], tt.field, tt.message)
			}
		})
	}
}

func TestContactService_ValidateBoundaries(t *testing.T) {
	svc := NewContactService(nil, nil)
	in := validContact()
	in.Name = strings.Repeat("a", 100)
	in.Message = strings.Repeat("m", 10)
	if err := svc.Validate(in); err != nil {
		t.Errorf("lower message and upper name bounds should pass: %v", err)
	}

	in.Message = strings.Repeat("m", 1000)
	in.Name = "J"
	if err := svc.Validate(in); err != nil {
		t.Errorf("upper message and lower name bounds should pass: %v", err)
	}
}

func TestContactService_ValidateCollectsAllFields(t *testing.T) {
	svc := NewContactService(nil, nil)
	err := svc.Validate(entities.ContactInput{})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 3 {
		t.Errorf("expected 3 field errors, got %+v", verr.Fields)
	}
	if !strings.HasPrefix(verr.Error(), "validation failed: ") {
		t.Errorf("unexpected error text: %s", verr.Error())
	}
}

func TestContactService_Submit(t *testing.T) {
	store := &mockStore{}
	mailer := &mockMailer{}
	svc := NewContactService(store, mailer)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	msg, err := svc.Submit(context.Background(), validContact())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if msg.ID == "" {
		t.Error("expected an ID")
	}
	if !msg.CreatedAt.Equal(fixed) {
		t.Errorf("unexpected timestamp: %v", msg.CreatedAt)
	}
	if len(store.created) != 1 || store.created[0].ID != msg.ID {
		t.Errorf("message not stored: %+v", store.created)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].Email != "jane@example.com" {
		t.Errorf("message not mailed: %+v", mailer.sent)
	}
}

func TestContactService_SubmitInvalidSkipsDelivery(t *testing.T) {
	store := &mockStore{}
	mailer := &mockMailer{}
	svc := NewContactService(store, mailer)

	in := validContact()
	in.Email = "bad"
	if _, err := svc.Submit(context.Background(), in); err == nil {
		t.Fatal("expected validation error")
	}
	if len(store.created) != 0 || len(mailer.sent) != 0 {
		t.Error("invalid submissions must not be stored or mailed")
	}
}

func TestContactService_SubmitMailerError(t *testing.T) {
	svc := NewContactService(nil, &mockMailer{err: errors.New("smtp: 535 auth failed")})

	_, err := svc.Submit(context.Background(), validContact())
	if err == nil {
		t.Fatal("expected error")
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		t.Error("delivery failure should not be a validation error")
	}
}

func TestContactService_SubmitStoreError(t *testing.T) {
	mailer := &mockMailer{}
	svc := NewContactService(&mockStore{err: errors.New("db closed")}, mailer)

	if _, err := svc.Submit(context.Background(), validContact()); err == nil {
		t.Fatal("expected error")
	}
	if len(mailer.sent) != 0 {
		t.Error("mail should not be sent when storing fails")
	}
}

func TestContactService_SubmitWithoutDelivery(t *testing.T) {
	svc := NewContactService(nil, nil)
	msg, err := svc.Submit(context.Background(), validContact())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if msg.Name != "Jane Doe" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

package repository

import (
	"errors"
	"testing"
)

func TestNewMessageRepository(t *testing.T) {
	repo := NewMessageRepository(nil, NewCreditLedger())
	if repo == nil {
		t.Fatal("expected non-nil MessageRepository")
	}
	if repo.db != nil {
		t.Fatal("expected nil db when constructed with nil")
	}
}

func TestSentinelErrors(t *testing.T) {
	if ErrMessageNotFound == nil {
		t.Fatal("ErrMessageNotFound should not be nil")
	}
	if ErrDuplicateMessage == nil {
		t.Fatal("ErrDuplicateMessage should not be nil")
	}
	if ErrInsufficientCredits.Error() != "insufficient credits" {
		t.Fatalf("unexpected error message: %s", ErrInsufficientCredits.Error())
	}
}

func TestIsDuplicateEntryError(t *testing.T) {
	if isDuplicateEntryError(nil) {
		t.Fatal("nil error should not be a duplicate entry error")
	}
	if isDuplicateEntryError(ErrMessageNotFound) {
		t.Fatal("ErrMessageNotFound should not be a duplicate entry error")
	}
	if !isDuplicateEntryError(errors.New("Error 1062 (23000): Duplicate entry 'x' for key 'uq_messages_sender_recipient'")) {
		t.Fatal("MySQL duplicate entry error should be detected")
	}
}

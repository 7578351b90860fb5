package credential

import (
	"testing"

	"github.com/99designs/keyring"

	"github.com/nhle/taskclient/internal/model"
)

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore(keyring.NewArrayKeyring(nil))

	got, err := s.Get(TokenKey)
	if err != nil || got != "" {
		t.Fatalf("empty store Get = %q, %v", got, err)
	}

	if err := s.Set(TokenKey, "abc"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err = s.Get(TokenKey)
	if err != nil || got != "abc" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	if err := s.Delete(TokenKey); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := s.Get(TokenKey); got != "" {
		t.Errorf("token survived delete: %q", got)
	}
}

func TestDeleteMissingKeyIsNoop(t *testing.T) {
	s := NewStore(keyring.NewArrayKeyring(nil))
	if err := s.Delete("nothing-here"); err != nil {
		t.Errorf("Delete missing key: %v", err)
	}
}

func TestOpenFileBackend(t *testing.T) {
	s, err := Open(model.CredentialsConfig{
		Backend: string(keyring.FileBackend),
		FileDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Set(TokenKey, "persisted"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := s.Get(TokenKey); got != "persisted" {
		t.Errorf("Get = %q", got)
	}
}

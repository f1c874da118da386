package authpw

import (
	"context"
	"testing"

	"okrhub/api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserStore struct {
	users map[string]store.User
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (store.User, bool, error) {
	user, ok := f.users[email]
	return user, ok, nil
}

func TestVerifyPlaintextSecret(t *testing.T) {
	service := NewService(&fakeUserStore{users: map[string]store.User{
		"demo@okrhub.dev": {ID: "u1", Email: "demo@okrhub.dev", Password: "demo123"},
	}})

	user, ok, err := service.Verify(context.Background(), "demo@okrhub.dev", "demo123")
	if err != nil || !ok {
		t.Fatalf("Verify() = ok=%v err=%v, want match", ok, err)
	}
	if user.ID != "u1" {
		t.Fatalf("Verify() user = %+v", user)
	}

	if _, ok, _ := service.Verify(context.Background(), "demo@okrhub.dev", "wrong"); ok {
		t.Fatal("Verify() accepted a wrong password")
	}
}

func TestVerifyBcryptSecret(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	service := NewService(&fakeUserStore{users: map[string]store.User{
		"lee@okrhub.dev": {ID: "u2", Email: "lee@okrhub.dev", Password: string(hash)},
	}})

	if _, ok, _ := service.Verify(context.Background(), "lee@okrhub.dev", "hunter22"); !ok {
		t.Fatal("Verify() rejected the correct bcrypt password")
	}
	if _, ok, _ := service.Verify(context.Background(), "lee@okrhub.dev", "hunter23"); ok {
		t.Fatal("Verify() accepted a wrong bcrypt password")
	}
}

func TestVerifyNormalizesEmail(t *testing.T) {
	service := NewService(&fakeUserStore{users: map[string]store.User{
		"demo@okrhub.dev": {ID: "u1", Email: "demo@okrhub.dev", Password: "demo123"},
	}})
	if _, ok, _ := service.Verify(context.Background(), "  Demo@OKRhub.dev ", "demo123"); !ok {
		t.Fatal("Verify() did not normalize the email")
	}
}

func TestVerifyUnknownOrEmpty(t *testing.T) {
	service := NewService(&fakeUserStore{users: map[string]store.User{}})
	if _, ok, _ := service.Verify(context.Background(), "nobody@okrhub.dev", "pw"); ok {
		t.Fatal("Verify() matched an unknown email")
	}
	if _, ok, _ := service.Verify(context.Background(), "", ""); ok {
		t.Fatal("Verify() matched empty credentials")
	}
}

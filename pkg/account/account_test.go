package account

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/diarydepresiku/moodlog/pkg/api"
	"github.com/diarydepresiku/moodlog/pkg/storage/memory"
)

type fakeIssuer struct {
	issued []int64
	err    error
}

func (f *fakeIssuer) Issue(userID int64, email string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.issued = append(f.issued, userID)
	return "token-for-" + email, nil
}

func newTestService(t *testing.T) (*Service, *memory.Store, *fakeIssuer) {
	t.Helper()
	store := memory.New(0)
	issuer := &fakeIssuer{}
	svc, err := New(store, issuer, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc, store, issuer
}

func TestRegisterAndLogin(t *testing.T) {
	svc, store, issuer := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, &api.UserCreate{Email: "Rina@Example.com", Password: "rahasia", Name: " Rina "})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.ID == 0 || u.Email != "rina@example.com" || u.Name != "Rina" {
		t.Errorf("user = %+v", u)
	}

	stored, _ := store.GetUserByEmail(ctx, "rina@example.com")
	if stored.PasswordHash == "rahasia" || !strings.HasPrefix(stored.PasswordHash, "$2") {
		t.Errorf("password not hashed: %q", stored.PasswordHash)
	}

	token, err := svc.Login(ctx, &api.UserLogin{Email: "RINA@example.com", Password: "rahasia"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "token-for-rina@example.com" {
		t.Errorf("token = %q", token)
	}
	if len(issuer.issued) != 1 || issuer.issued[0] != u.ID {
		t.Errorf("issued = %v", issuer.issued)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	req := &api.UserCreate{Email: "a@b.c", Password: "p", Name: "A"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, req); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate err = %v, want ErrEmailTaken", err)
	}
}

func TestRegister_PasswordTooLong(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Register(context.Background(), &api.UserCreate{
		Email: "a@b.c", Password: strings.Repeat("p", MaxPasswordBytes+1), Name: "A",
	})
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("err = %v, want ErrPasswordTooLong", err)
	}
}

func TestLogin_Failures(t *testing.T) {
	svc, _, issuer := newTestService(t)
	ctx := context.Background()
	svc.Register(ctx, &api.UserCreate{Email: "a@b.c", Password: "benar", Name: "A"})

	tests := []struct {
		name  string
		login api.UserLogin
	}{
		{"wrong password", api.UserLogin{Email: "a@b.c", Password: "salah"}},
		{"unknown email", api.UserLogin{Email: "x@y.z", Password: "benar"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, &tt.login); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
	if len(issuer.issued) != 0 {
		t.Errorf("tokens issued on failure: %v", issuer.issued)
	}
}

func TestLogin_IssuerError(t *testing.T) {
	svc, _, issuer := newTestService(t)
	ctx := context.Background()
	svc.Register(ctx, &api.UserCreate{Email: "a@b.c", Password: "p", Name: "A"})

	issuer.err = errors.New("signing failed")
	_, err := svc.Login(ctx, &api.UserLogin{Email: "a@b.c", Password: "p"})
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want internal error", err)
	}
}

package onboarding

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"testing"
)

type stubAccounts struct {
	calls []string
	err   error
}

func (s *stubAccounts) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	s.calls = append(s.calls, displayName)
	return s.err
}

type stubBonus struct {
	granted bool
	amounts []int64
	err     error
}

func (s *stubBonus) GrantWelcomeBonusOnce(ctx context.Context, userID string, amount int64, metadata map[string]interface{}) (bool, error) {
	s.amounts = append(s.amounts, amount)
	return s.granted, s.err
}

func TestOnboardNewUserGrantsChipsAndNames(t *testing.T) {
	accounts := &stubAccounts{}
	bonus := &stubBonus{granted: true}
	svc := NewService(accounts, bonus, rand.New(rand.NewSource(1)))

	res, err := svc.OnboardNewUser(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !res.WelcomeBonusGranted {
		t.Fatal("WelcomeBonusGranted = false on first onboarding")
	}
	if res.ProfileUpdateErr != nil {
		t.Fatalf("ProfileUpdateErr = %v", res.ProfileUpdateErr)
	}
	if len(bonus.amounts) != 1 || bonus.amounts[0] != 10000 {
		t.Fatalf("grant amounts = %v, want one default welcome grant", bonus.amounts)
	}
	if len(accounts.calls) != 1 {
		t.Fatalf("profile updates = %d, want 1", len(accounts.calls))
	}
	if ok, _ := regexp.MatchString(`^[A-Z][a-z]+[A-Z][a-z]+\d{4}$`, accounts.calls[0]); !ok {
		t.Fatalf("display name = %q, want AdjectiveNoun0000 shape", accounts.calls[0])
	}
}

func TestOnboardNewUserProfileFailureIsNonFatal(t *testing.T) {
	accounts := &stubAccounts{err: errors.New("transport down")}
	bonus := &stubBonus{granted: true}
	svc := NewService(accounts, bonus, rand.New(rand.NewSource(1)))

	res, err := svc.OnboardNewUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("err = %v, want nil despite profile failure", err)
	}
	if res.ProfileUpdateErr == nil {
		t.Fatal("ProfileUpdateErr missing")
	}
	if !res.WelcomeBonusGranted {
		t.Fatal("chip grant must still run after a profile failure")
	}
}

func TestOnboardNewUserRepeatDoesNotPayTwice(t *testing.T) {
	svc := NewService(&stubAccounts{}, &stubBonus{granted: false}, rand.New(rand.NewSource(1)))

	res, err := svc.OnboardNewUser(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if res.WelcomeBonusGranted {
		t.Fatal("WelcomeBonusGranted = true on a repeat onboarding")
	}
}

func TestOnboardNewUserGrantErrorSurfaces(t *testing.T) {
	svc := NewService(&stubAccounts{}, &stubBonus{err: errors.New("wallet write failed")}, nil)
	if _, err := svc.OnboardNewUser(context.Background(), "u1"); err == nil {
		t.Fatal("grant failure must surface")
	}
}

func TestServiceRequiresPorts(t *testing.T) {
	svc := &Service{}
	if _, err := svc.OnboardNewUser(context.Background(), "u1"); err == nil {
		t.Fatal("unconfigured service must refuse to onboard")
	}
}

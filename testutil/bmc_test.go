package testutil

import (
	"context"
	"net/http"
	"strings"
	"testing"
)

func TestBMC_RequiresToken(t *testing.T) {
	bmc := NewBMC(t)

	resp, err := http.Get(bmc.URL() + "/api/bmc?opt=get&type=info")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, bmc.URL()+"/api/bmc?opt=get&type=info", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", resp.StatusCode)
	}

	attempts := bmc.Attempts()
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(attempts))
	}
	if attempts[0].Authorization != "" || attempts[1].Authorization != "Bearer test-token" {
		t.Errorf("unexpected authorization headers %+v", attempts)
	}
	if attempts[0].Query != "opt=get&type=info" {
		t.Errorf("unexpected query %q", attempts[0].Query)
	}
}

func TestBMC_Login(t *testing.T) {
	bmc := NewBMC(t, WithUser("admin", "secret"), WithToken("abc"))

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"accepted", `{"username":"admin","password":"secret"}`, http.StatusOK},
		{"rejected", `{"username":"admin","password":"nope"}`, http.StatusForbidden},
		{"malformed", `{`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(bmc.URL()+"/api/bmc/authenticate", "application/json", strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			_ = resp.Body.Close()
			if resp.StatusCode != tc.status {
				t.Errorf("expected %d, got %d", tc.status, resp.StatusCode)
			}
		})
	}
	if bmc.Logins() != 3 {
		t.Errorf("expected 3 logins, got %d", bmc.Logins())
	}
	if len(bmc.APIAttempts()) != 0 {
		t.Error("logins must not count as API attempts")
	}
}

func TestBMC_ResetSnapshotRestore(t *testing.T) {
	bmc := NewBMC(t, WithoutAuth())
	h := T(t)

	resp, err := http.Get(bmc.URL() + "/api/bmc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = resp.Body.Close()

	snap := h.Snapshot(bmc)
	h.Reset(bmc)
	if len(bmc.Attempts()) != 0 || bmc.Logins() != 0 {
		t.Fatal("Reset should clear recorded state")
	}
	h.Restore(bmc, snap)
	if len(bmc.Attempts()) != 1 {
		t.Errorf("expected restored attempt, got %d", len(bmc.Attempts()))
	}
	if err := bmc.Restore(context.Background(), "bogus"); err == nil {
		t.Error("expected error for a foreign snapshot")
	}
}

func TestSetupAndTeardown(t *testing.T) {
	bmc := newBMC()
	cleanup, err := Setup(bmc)
	if err != nil {
		t.Fatalf("Setup() failed: %v", err)
	}
	if bmc.URL() == "" {
		t.Fatal("expected a running server")
	}
	if err := bmc.Start(context.Background()); err == nil {
		t.Error("starting twice should fail")
	}
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup() failed: %v", err)
	}
	if bmc.URL() != "" {
		t.Error("expected server to be stopped")
	}
	if err := Teardown(bmc); err != nil {
		t.Errorf("stopping a stopped component should be a no-op, got %v", err)
	}
}

func TestBMC_Target(t *testing.T) {
	bmc := NewBMC(t)
	tgt := bmc.Target()
	if !strings.HasPrefix(tgt.String(), bmc.URL()+"/api/bmc") {
		t.Errorf("unexpected target %s", tgt)
	}
}

package workflows

import (
	"context"
	"errors"
	"os"
	"testing"

	kerrors "github.com/PolarWolf314/tunnelrelay/internal/errors"
)

func strPtr(s string) *string { return &s }

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	paths := newTestPaths(t)
	env := openTestEnvironment(t, paths)

	err := Update(ctx, env, UpdateOptions{
		RelayURL:       strPtr("sbname.servicebus.windows.net"),
		ConnectionName: strPtr("my-connection"),
		KeyName:        strPtr("RootManageSharedAccessKey"),
		RedirectionURL: strPtr("http://localhost:4200/"),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if err := Update(ctx, env, UpdateOptions{KeyName: strPtr("")}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	settings := openTestEnvironment(t, paths).Store.Snapshot()
	if settings.HybridConnectionURL != "sbname.servicebus.windows.net" || settings.HybridConnectionName != "my-connection" {
		t.Errorf("Partial update lost relay fields: %+v", settings)
	}
	if settings.HybridConnectionKeyName != "" {
		t.Errorf("Expected key name to be cleared, got %q", settings.HybridConnectionKeyName)
	}
	if settings.RedirectionURL != "http://localhost:4200/" {
		t.Errorf("Expected new redirection url, got %q", settings.RedirectionURL)
	}
}

func TestUpdateRejectsRedirectionURL(t *testing.T) {
	paths := newTestPaths(t)
	env := openTestEnvironment(t, paths)

	err := Update(context.Background(), env, UpdateOptions{
		ConnectionName: strPtr("ignored"),
		RedirectionURL: strPtr("ftp://localhost/"),
	})
	if !errors.Is(err, kerrors.ErrInvalidRedirectionURL) {
		t.Fatalf("Expected ErrInvalidRedirectionURL, got %v", err)
	}
	if _, err := os.Stat(env.Store.Path()); !os.IsNotExist(err) {
		t.Error("Rejected update should not be saved")
	}
}

func TestUpdateOptionsIsEmpty(t *testing.T) {
	if !(UpdateOptions{}).IsEmpty() {
		t.Error("Expected empty options")
	}
	if (UpdateOptions{KeyName: strPtr("")}).IsEmpty() {
		t.Error("Explicit empty value is a change")
	}
}

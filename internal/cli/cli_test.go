package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/giannis84/character-favourites/internal/favourites"
	"golang.org/x/crypto/bcrypt"
)

// run executes favctl against a file backend rooted at dir.
func run(t *testing.T, dir string, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand("test")
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--backend", "file", "--path", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestFavctl_ToggleListClear(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "", "toggle", "--user", "A@x.com", "5")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if strings.TrimSpace(out) != "[5]" {
		t.Errorf("toggle output = %q, want [5]", out)
	}

	data, err := os.ReadFile(filepath.Join(dir, favourites.DefaultStorageKey+".json"))
	if err != nil {
		t.Fatalf("blob not written: %v", err)
	}
	if string(data) != `{"a@x.com":[5]}` {
		t.Errorf("blob = %s", data)
	}

	out, _ = run(t, dir, "", "list")
	if strings.TrimSpace(out) != `{"a@x.com":[5]}` {
		t.Errorf("list output = %q", out)
	}

	out, _ = run(t, dir, "", "check", "-u", "a@x.com", "5")
	if strings.TrimSpace(out) != "true" {
		t.Errorf("check output = %q, want true", out)
	}

	out, _ = run(t, dir, "", "count", "-u", "a@x.com")
	if strings.TrimSpace(out) != "1" {
		t.Errorf("count output = %q, want 1", out)
	}

	out, err = run(t, dir, "", "clear", "-u", "a@x.com")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !strings.Contains(out, "cleared 1 favourites") {
		t.Errorf("clear output = %q", out)
	}

	out, _ = run(t, dir, "", "list")
	if strings.TrimSpace(out) != `{}` {
		t.Errorf("list after clear = %q, want {}", out)
	}
}

func TestFavctl_BulkToggle(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "", "toggle", "-u", "u@x.com", "3", "1", "4", "4")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if strings.TrimSpace(out) != "[3,1]" {
		t.Errorf("toggle output = %q, want [3,1]", out)
	}

	run(t, dir, "", "toggle", "-u", "v@x.com", "9")
	out, _ = run(t, dir, "", "users")
	if out != "u@x.com\t2\nv@x.com\t1\n" {
		t.Errorf("users output = %q", out)
	}

	out, _ = run(t, dir, "", "list", "-u", "u@x.com")
	if strings.TrimSpace(out) != "[3,1]" {
		t.Errorf("list output = %q", out)
	}
}

func TestFavctl_Errors(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		errSubstr string
	}{
		{name: "toggle without user", args: []string{"toggle", "1"}, errSubstr: "--user is required"},
		{name: "toggle with bad id", args: []string{"toggle", "-u", "a@x.com", "abc"}, errSubstr: "invalid character id"},
		{name: "toggle with zero id", args: []string{"toggle", "-u", "a@x.com", "0"}, errSubstr: "invalid character id"},
		{name: "count without user", args: []string{"count"}, errSubstr: "--user is required"},
		{name: "unknown backend", args: []string{"--backend", "redis", "list"}, errSubstr: "unknown storage backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, t.TempDir(), "", tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errSubstr)
			}
		})
	}
}

func TestFavctl_CorruptBlobStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, favourites.DefaultStorageKey+".json")
	if err := os.WriteFile(path, []byte(`{"a@x.com":"nope"`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, dir, "", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.TrimSpace(out) != `{}` {
		t.Errorf("list output = %q, want {}", out)
	}
}

func TestFavctl_HashPassword(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
	}{
		{name: "argument", args: []string{"hash-password", "wubba-lubba"}},
		{name: "stdin", args: []string{"hash-password"}, stdin: "wubba-lubba\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, t.TempDir(), tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("hash-password: %v", err)
			}
			hash := strings.TrimSpace(out)
			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("wubba-lubba")); err != nil {
				t.Errorf("hash does not match password: %v", err)
			}
		})
	}

	if _, err := run(t, t.TempDir(), "", "hash-password"); err == nil {
		t.Error("expected error for empty stdin")
	}
}

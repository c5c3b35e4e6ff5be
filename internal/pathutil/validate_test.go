package pathutil

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestValidatePath(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "designs"), 0o700); err != nil {
		t.Fatal(err)
	}
	sep := string(os.PathSeparator)

	tests := []struct {
		name    string
		path    string
		allowed []string
		errLike string // empty means the path is accepted
	}{
		{"file in root", filepath.Join(root, "panel.yaml"), []string{root}, ""},
		{"file in subdirectory", filepath.Join(root, "designs", "panel.yaml"), []string{root}, ""},
		{"root itself", root, []string{root}, ""},
		{"doubled separator", root + sep + sep + "panel.yaml", []string{root}, ""},
		{"second allowed dir", filepath.Join(other, "beam.hcl"), []string{root, other}, ""},
		{"missing intermediate dirs", filepath.Join(root, "a", "b", "c.yaml"), []string{root}, ""},
		{"dot-dot escape", filepath.Join(root, "..", "etc", "passwd"), []string{root}, "outside allowed directories"},
		{"nested dot-dot escape", filepath.Join(root, "designs", "..", "..", "x.yaml"), []string{root}, "outside allowed directories"},
		{"other directory", filepath.Join(other, "beam.hcl"), []string{root}, "outside allowed directories"},
		{"sibling with shared prefix", root + "-evil" + sep + "x.yaml", []string{root}, "outside allowed directories"},
		{"null byte", filepath.Join(root, "pan\x00el.yaml"), []string{root}, "null byte"},
		{"empty path", "", []string{root}, "empty"},
		{"no allowed dirs", filepath.Join(root, "panel.yaml"), nil, "no allowed directories"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path, tt.allowed)
			if tt.errLike == "" {
				if err != nil {
					t.Errorf("ValidatePath() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errLike) {
				t.Errorf("ValidatePath() error = %v, want error containing %q", err, tt.errLike)
			}
		})
	}
}

func TestValidatePath_Symlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on Windows")
	}

	root := t.TempDir()
	outside := t.TempDir()
	inside := filepath.Join(root, "real")
	if err := os.MkdirAll(inside, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "escape")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(inside, filepath.Join(root, "link")); err != nil {
		t.Fatal(err)
	}

	if err := ValidatePath(filepath.Join(root, "link", "panel.yaml"), []string{root}); err != nil {
		t.Errorf("link inside root rejected: %v", err)
	}
	err := ValidatePath(filepath.Join(root, "escape", "panel.yaml"), []string{root})
	if !errors.Is(err, ErrOutsideAllowed) {
		t.Errorf("link escaping root: error = %v, want ErrOutsideAllowed", err)
	}
}

func TestRedactPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"simple", "/home/user/.hyperscore/config.yaml", ".../.hyperscore/config.yaml"},
		{"deep", "/a/b/c/d/e.txt", ".../d/e.txt"},
		{"root file", "/file.txt", "file.txt"},
		{"relative", "dir/file.txt", ".../dir/file.txt"},
		{"just filename", "file.txt", "file.txt"},
		{"trailing slash cleaned", "/home/user/designs/", ".../user/designs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RedactPath(tt.input)
			if got != tt.want {
				t.Errorf("RedactPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidatePath_ErrOutsideAllowed(t *testing.T) {
	err := ValidatePath(filepath.Join(t.TempDir(), "panel.yaml"), []string{t.TempDir()})
	if !errors.Is(err, ErrOutsideAllowed) {
		t.Errorf("error = %v, want ErrOutsideAllowed", err)
	}
}

func TestResolveWithin(t *testing.T) {
	root := t.TempDir()
	extra := t.TempDir()

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"relative file", "designs/panel.yaml", filepath.Join(root, "designs", "panel.yaml"), false},
		{"absolute inside root", filepath.Join(root, "panel.hcl"), filepath.Join(root, "panel.hcl"), false},
		{"extra directory", filepath.Join(extra, "beam.yaml"), filepath.Join(extra, "beam.yaml"), false},
		{"relative escape", "../outside.yaml", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveWithin(root, tt.path, extra)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveWithin() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			// Compare after resolving symlinks in the temp root.
			wantResolved, _ := resolveExistingParent(tt.want)
			gotResolved, _ := resolveExistingParent(got)
			if gotResolved != wantResolved {
				t.Errorf("ResolveWithin() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserScenarioDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	dir, err := UserScenarioDir()
	if err != nil {
		t.Fatalf("UserScenarioDir() error = %v", err)
	}
	if want := filepath.Join(home, ".hyperscore", "scenarios"); dir != want {
		t.Errorf("UserScenarioDir() = %q, want %q", dir, want)
	}
}

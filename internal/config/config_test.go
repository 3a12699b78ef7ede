package config

import "testing"

func TestMajorMinor(t *testing.T) {
	cases := []struct {
		version string
		want    string
	}{
		{"2.4.1", "2.4"},
		{"2.4", "2.4"},
		{"3", "3"},
	}
	for _, c := range cases {
		cfg := &Config{BuildVersion: c.version}
		if got := cfg.MajorMinor(); got != c.want {
			t.Errorf("MajorMinor(%q) = %q, want %q", c.version, got, c.want)
		}
	}
}

func TestResolveDirAbsolute(t *testing.T) {
	got, err := ResolveDir("/tmp/prodlog")
	if err != nil {
		t.Fatalf("ResolveDir: %v", err)
	}
	if got != "/tmp/prodlog" {
		t.Errorf("ResolveDir(absolute) = %q", got)
	}
}

func TestResolveDirRelative(t *testing.T) {
	got, err := ResolveDir(".local/share/prodlog")
	if err != nil {
		t.Fatalf("ResolveDir: %v", err)
	}
	if got == ".local/share/prodlog" {
		t.Errorf("ResolveDir did not expand relative path: %q", got)
	}
}

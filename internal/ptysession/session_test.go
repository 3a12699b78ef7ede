package ptysession

import "testing"

func TestSplitCmd(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"bash", []string{"bash"}},
		{"bash -l", []string{"bash", "-l"}},
		{"  zsh   -i  ", []string{"zsh", "-i"}},
	}
	for _, c := range cases {
		got := SplitCmd(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("SplitCmd(%q) = %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("SplitCmd(%q)[%d] = %q, want %q", c.in, i, got[i], c.want[i])
			}
		}
	}
}

func TestNewRejectsEmptyCmd(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected an error for an empty Cmd")
	}
}

package protocol

import "testing"

func TestUnescapeAndUnquoteCmdSimple(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`'ls' '-l'`, "ls -l"},
		{`'echo' 'hello\ world'`, "echo 'hello world'"},
		{`'echo' '\\'`, `echo '\'`},
	}
	for _, c := range cases {
		if got := unescapeAndUnquoteCmd(c.in); got != c.want {
			t.Errorf("unescapeAndUnquoteCmd(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

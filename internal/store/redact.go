package store

import (
	"fmt"
	"strings"

	"github.com/nielsreijers/prodlog/internal/capture"
)

// RedactEntry replaces every occurrence of each password in uuid's cmd,
// message, and the three content blobs, and reports whether anything
// changed.
func (s *Store) RedactEntry(uuid string, passwords []string) (bool, error) {
	c, err := s.GetEntryByID(uuid)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, fmt.Errorf("redact: no such capture %s", uuid)
	}
	if !redactCapture(c, passwords) {
		return false, nil
	}
	if err := s.UpdateEntry(c); err != nil {
		return false, err
	}
	return true, nil
}

// RedactAll applies RedactEntry's replacement to every stored capture.
func (s *Store) RedactAll(passwords []string) (int, error) {
	entries, err := s.GetEntries(Filters{ShowNoop: true})
	if err != nil {
		return 0, err
	}
	count := 0
	for _, c := range entries {
		if !redactCapture(c, passwords) {
			continue
		}
		if err := s.UpdateEntry(c); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

const redactedPlaceholder = "[REDACTED]"

func redactCapture(c *capture.Capture, passwords []string) bool {
	redacted := false

	for _, pw := range passwords {
		if pw == "" {
			continue
		}
		if newCmd := strings.ReplaceAll(c.Cmd, pw, redactedPlaceholder); newCmd != c.Cmd {
			c.Cmd = newCmd
			redacted = true
		}
		if newMsg := strings.ReplaceAll(c.Message, pw, redactedPlaceholder); newMsg != c.Message {
			c.Message = newMsg
			redacted = true
		}
	}

	redactBytes := func(field *[]byte) {
		if len(*field) == 0 {
			return
		}
		s := string(*field)
		for _, pw := range passwords {
			if pw == "" {
				continue
			}
			if replaced := strings.ReplaceAll(s, pw, redactedPlaceholder); replaced != s {
				s = replaced
				redacted = true
			}
		}
		*field = []byte(s)
	}
	redactBytes(&c.CapturedOutput)
	redactBytes(&c.OriginalContent)
	redactBytes(&c.EditedContent)

	return redacted
}

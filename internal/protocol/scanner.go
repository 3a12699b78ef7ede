package protocol

import (
	"strconv"
	"strings"

	"github.com/nielsreijers/prodlog/internal/logger"
)

// markerPrefix is the fixed 48-byte sentinel that opens every protocol
// command. The UUID embedded in it exists only to make the sequence
// vanishingly unlikely to occur in ordinary shell output.
const markerPrefix = "\x1a(dd0d3038-1d43-11f0-9761-022486cd4c38) PRODLOG:"

const bodyTerminator = ';'

type state int

const (
	stateNormal state = iota
	stateMatchingPrefix
	stateReadingBody
)

// Sink receives the scanner's output: verbatim bytes meant for the user's
// terminal and the active capture, and fully parsed protocol events.
type Sink interface {
	WritePassthrough(p []byte) error
	HandleEvent(ev Event)
}

// Scanner is a streaming state machine over an arbitrary byte stream,
// isolating the in-band command protocol from everything else the child
// shell writes. One Scanner serves exactly one stream; it is not
// safe for concurrent use.
type Scanner struct {
	sink Sink

	st      state
	matched int // bytes of markerPrefix matched so far, valid in stateMatchingPrefix
	body    strings.Builder

	passthrough []byte // pending span, flushed on state transitions or end of chunk
}

// NewScanner builds a Scanner that delivers pass-through bytes and events
// to sink.
func NewScanner(sink Sink) *Scanner {
	return &Scanner{sink: sink}
}

// Process consumes one chunk of the stream. It never blocks beyond the
// sink's own WritePassthrough call, and it preserves partial match state
// across calls so a marker split across two reads is still recognized.
func (s *Scanner) Process(chunk []byte) error {
	for i := 0; i < len(chunk); i++ {
		b := chunk[i]
		switch s.st {
		case stateNormal:
			if b == markerPrefix[0] {
				if err := s.flushPassthrough(); err != nil {
					return err
				}
				s.st = stateMatchingPrefix
				s.matched = 1
			} else {
				s.passthrough = append(s.passthrough, b)
			}

		case stateMatchingPrefix:
			if b == markerPrefix[s.matched] {
				s.matched++
				if s.matched == len(markerPrefix) {
					s.st = stateReadingBody
					s.body.Reset()
				}
			} else {
				// False start: replay the matched prefix bytes as
				// pass-through and re-examine b from Normal, since it may
				// itself be the prefix's first byte.
				s.passthrough = append(s.passthrough, markerPrefix[:s.matched]...)
				s.st = stateNormal
				s.matched = 0
				if err := s.flushPassthrough(); err != nil {
					return err
				}
				i--
			}

		case stateReadingBody:
			if b == bodyTerminator {
				body := s.body.String()
				s.body.Reset()
				s.st = stateNormal
				ev, result := parseBody(body)
				switch result {
				case parseOK:
					s.sink.HandleEvent(ev)
				case parseUnknownVerb:
					// Unknown markers must not be silently eaten: replay
					// the whole sequence verbatim for a future version of
					// the protocol (or a human) to make sense of.
					s.passthrough = append(s.passthrough, markerPrefix...)
					s.passthrough = append(s.passthrough, body...)
					s.passthrough = append(s.passthrough, bodyTerminator)
					if err := s.flushPassthrough(); err != nil {
						return err
					}
				case parseMalformed:
					// Known verb, bad arity: drop silently, already logged.
				}
			} else {
				s.body.WriteByte(b)
			}
		}
	}
	return s.flushPassthrough()
}

func (s *Scanner) flushPassthrough() error {
	if len(s.passthrough) == 0 {
		return nil
	}
	p := s.passthrough
	s.passthrough = nil
	return s.sink.WritePassthrough(p)
}

type parseResult int

const (
	parseOK parseResult = iota
	parseMalformed
	parseUnknownVerb
)

func parseBody(body string) (Event, parseResult) {
	parts := strings.Split(body, ":")
	verb := parts[0]
	args := parts[1:]

	switch verb {
	case verbIsInactive:
		return Event{Kind: KindStatusCheckRequested}, parseOK

	case verbAreYouRunning:
		if len(args) < 1 {
			logger.Warn("protocol: ARE_YOU_RUNNING missing version arg")
			return Event{}, parseMalformed
		}
		return Event{Kind: KindHeartbeatRequested, Version: decodeString(args[0])}, parseOK

	case verbStartRun:
		if len(args) < 5 {
			logger.Warn("protocol: START_CAPTURE_RUN missing args", "got", len(args))
			return Event{}, parseMalformed
		}
		return Event{
			Kind:       KindRunCaptureStarted,
			Host:       decodeString(args[0]),
			Cwd:        decodeString(args[1]),
			RawCmd:     unescapeAndUnquoteCmd(decodeString(args[2])),
			Message:    decodeString(args[3]),
			RemoteUser: decodeString(args[4]),
		}, parseOK

	case verbStopRun:
		if len(args) < 1 {
			logger.Warn("protocol: STOP_CAPTURE_RUN missing args")
			return Event{}, parseMalformed
		}
		return Event{Kind: KindRunCaptureStopped, ExitCode: parseExitCode(decodeString(args[0]))}, parseOK

	case verbStartEdit:
		if len(args) < 7 {
			logger.Warn("protocol: START_CAPTURE_EDIT missing args", "got", len(args))
			return Event{}, parseMalformed
		}
		return Event{
			Kind:       KindEditCaptureStarted,
			Host:       decodeString(args[0]),
			Cwd:        decodeString(args[1]),
			Cmd:        decodeString(args[2]),
			Message:    decodeString(args[3]),
			RemoteUser: decodeString(args[4]),
			Filename:   decodeString(args[5]),
			Original:   decodeBytes(args[6]),
		}, parseOK

	case verbStopEdit:
		if len(args) < 2 {
			logger.Warn("protocol: STOP_CAPTURE_EDIT missing args")
			return Event{}, parseMalformed
		}
		return Event{
			Kind:     KindEditCaptureStopped,
			ExitCode: parseExitCode(decodeString(args[0])),
			Edited:   decodeBytes(args[1]),
		}, parseOK

	case verbTaskStartNew:
		if len(args) < 1 {
			logger.Warn("protocol: TASK_START_NEW missing name arg")
			return Event{}, parseMalformed
		}
		return Event{Kind: KindTaskCreateAndActivate, TaskName: decodeString(args[0])}, parseOK

	case verbTaskList:
		return Event{Kind: KindTaskListRequested}, parseOK

	case verbTaskSetActive:
		if len(args) < 1 {
			logger.Warn("protocol: TASK_SET_ACTIVE missing id arg")
			return Event{}, parseMalformed
		}
		return Event{Kind: KindTaskActivate, TaskID: decodeString(args[0])}, parseOK

	case verbTaskUnsetActive:
		return Event{Kind: KindTaskDeactivate}, parseOK

	default:
		logger.Warn("protocol: unknown verb, passing through", "verb", verb)
		return Event{}, parseUnknownVerb
	}
}

func parseExitCode(s string) int32 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return ExitCodeParseFailure
	}
	return int32(n)
}

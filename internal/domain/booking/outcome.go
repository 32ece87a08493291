package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OutcomeKind tags an Outcome.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota + 1
	OutcomeServerRejection
	OutcomeNetworkError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeServerRejection:
		return "server_rejection"
	case OutcomeNetworkError:
		return "network_error"
	default:
		return "unknown"
	}
}

func (k OutcomeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// ParseOutcomeKind is the inverse of OutcomeKind.String. Unknown names map to 0.
func ParseOutcomeKind(s string) OutcomeKind {
	for _, k := range []OutcomeKind{OutcomeSuccess, OutcomeServerRejection, OutcomeNetworkError} {
		if k.String() == s {
			return k
		}
	}
	return 0
}

// Outcome is the classified result of a booking submission. Exactly one of
// BookingRef, Message or Cause is meaningful, selected by Kind.
type Outcome struct {
	Kind       OutcomeKind
	BookingRef string
	Message    string
	Cause      error
}

func Success(ref string) Outcome { return Outcome{Kind: OutcomeSuccess, BookingRef: ref} }

func ServerRejection(msg string) Outcome { return Outcome{Kind: OutcomeServerRejection, Message: msg} }

func NetworkError(cause error) Outcome { return Outcome{Kind: OutcomeNetworkError, Cause: cause} }

func (o Outcome) IsSuccess() bool { return o.Kind == OutcomeSuccess }

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeSuccess:
		return fmt.Sprintf("success(%s)", o.BookingRef)
	case OutcomeServerRejection:
		return fmt.Sprintf("rejected(%s)", o.Message)
	case OutcomeNetworkError:
		return fmt.Sprintf("network error(%v)", o.Cause)
	default:
		return "unknown outcome"
	}
}

// DecodeOutcome classifies a raw backend response. An explicit success flag or
// a created booking id means Success; every other shape, including non-JSON
// bodies, is a ServerRejection. Fields are read independently, so an
// unexpected shape in one never hides another.
func DecodeOutcome(body []byte) Outcome {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return ServerRejection(rejectionText(body))
	}

	ref := bookingRef(fields["booking"])
	var ok bool
	if err := json.Unmarshal(fields["success"], &ok); err == nil && ok {
		return Success(ref)
	}
	if ref != "" {
		return Success(ref)
	}
	if msg := idString(fields["error"]); msg != "" {
		return ServerRejection(msg)
	}
	if msg := idString(fields["message"]); msg != "" {
		return ServerRejection(msg)
	}
	return ServerRejection(rejectionText(body))
}

// bookingRef returns booking.id, else booking._id. A booking that is not an
// object has no ref.
func bookingRef(raw json.RawMessage) string {
	var b map[string]json.RawMessage
	if err := json.Unmarshal(raw, &b); err != nil {
		return ""
	}
	if ref := idString(b["id"]); ref != "" {
		return ref
	}
	return idString(b["_id"])
}

// idString renders a JSON string or number; anything else is "".
func idString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func rejectionText(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "booking was not accepted"
	}
	return s
}

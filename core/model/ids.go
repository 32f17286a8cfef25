package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ActionKind tells whether an action belongs to a committed ride or to a
// request that is still being matched.
type ActionKind uint8

const (
	KindNone ActionKind = iota
	KindRide
	KindRequest
)

func (k ActionKind) String() string {
	switch k {
	case KindRide:
		return "ride"
	case KindRequest:
		return "request"
	default:
		return ""
	}
}

// ActionID identifies the ride or request a stop belongs to. The zero value
// means the stop carries no identifier. ActionID is comparable and safe to use
// as a map key.
type ActionID struct {
	Kind  ActionKind
	Value string
}

// RideID returns the identifier of a committed ride.
func RideID(id string) ActionID { return ActionID{Kind: KindRide, Value: id} }

// RequestID returns the identifier of a pending request.
func RequestID(id string) ActionID { return ActionID{Kind: KindRequest, Value: id} }

// IsZero reports whether no identifier is set.
func (a ActionID) IsZero() bool { return a.Kind == KindNone || a.Value == "" }

// IsRequest reports whether the identifier refers to a pending request.
func (a ActionID) IsRequest() bool { return a.Kind == KindRequest && a.Value != "" }

// Equal compares kind and value.
func (a ActionID) Equal(o ActionID) bool { return a == o }

// String renders the identifier as "<kind>:<value>".
func (a ActionID) String() string {
	if a.IsZero() {
		return ""
	}
	return a.Kind.String() + ":" + a.Value
}

// ParseActionID parses the String form.
func ParseActionID(s string) (ActionID, error) {
	if s == "" {
		return ActionID{}, nil
	}
	kind, val, ok := strings.Cut(s, ":")
	if !ok || val == "" {
		return ActionID{}, fmt.Errorf("invalid action id %q", s)
	}
	switch kind {
	case "ride":
		return RideID(val), nil
	case "request":
		return RequestID(val), nil
	}
	return ActionID{}, fmt.Errorf("invalid action kind %q", kind)
}

func (a ActionID) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *ActionID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	id, err := ParseActionID(s)
	if err != nil {
		return err
	}
	*a = id
	return nil
}

// UnmarshalText lets yaml and mapstructure decoders read the String form.
func (a *ActionID) UnmarshalText(b []byte) error {
	id, err := ParseActionID(string(b))
	if err != nil {
		return err
	}
	*a = id
	return nil
}

func (a ActionID) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

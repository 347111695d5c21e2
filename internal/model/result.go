package model

import (
	"encoding/json"
	"fmt"
)

// Result is a value that is either known or explicitly unavailable, with the reason.
type Result[T any] struct {
	value  T
	reason string
	ok     bool
}

// Ok wraps a known value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// Unavailable marks a value as unknown.
func Unavailable[T any](reason string) Result[T] {
	return Result[T]{reason: reason}
}

// Get returns the value and whether it is known.
func (r Result[T]) Get() (T, bool) { return r.value, r.ok }

// OK reports whether the value is known.
func (r Result[T]) OK() bool { return r.ok }

// Reason returns why the value is unavailable. Empty for known values.
func (r Result[T]) Reason() string { return r.reason }

// OrElse returns the value if known, otherwise fallback.
func (r Result[T]) OrElse(fallback T) T {
	if r.ok {
		return r.value
	}
	return fallback
}

func (r Result[T]) String() string {
	if !r.ok {
		return "N/A"
	}
	return fmt.Sprint(r.value)
}

type resultJSON[T any] struct {
	Status string `json:"status"`
	Value  *T     `json:"value,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.ok {
		v := r.value
		return json.Marshal(resultJSON[T]{Status: "ok", Value: &v})
	}
	return json.Marshal(resultJSON[T]{Status: "unavailable", Reason: r.reason})
}

func (r *Result[T]) UnmarshalJSON(data []byte) error {
	var raw resultJSON[T]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Status {
	case "ok":
		if raw.Value == nil {
			return fmt.Errorf("result: status ok without value")
		}
		*r = Ok(*raw.Value)
	case "unavailable":
		*r = Unavailable[T](raw.Reason)
	default:
		return fmt.Errorf("result: unknown status %q", raw.Status)
	}
	return nil
}

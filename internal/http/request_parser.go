// Package http provides the JSON API of the budget service.
//
// This file implements utilities for decoding request bodies. Amounts are
// accepted as JSON numbers or as strings with "." or "," decimals.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"orcamento/internal/core"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("malformed request body")

// Amount is a currency or percentage value as sent by clients. Decoding never
// fails; a value that cannot be parsed is reported by Float.
type Amount struct {
	value float64
	set   bool
	err   error
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	a.set = true
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		a.set = false
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			a.err = core.ErrInvalidAmount
			return nil
		}
		a.value, a.err = core.ParseAmount(s)
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		a.err = core.ErrInvalidAmount
		return nil
	}
	a.value = v
	return nil
}

// Set reports whether the field was present.
func (a Amount) Set() bool { return a.set }

// Float returns the parsed value, or a validation error for form and field.
// A missing field is invalid.
func (a Amount) Float(form, field string) (float64, error) {
	if !a.set || a.err != nil {
		return 0, &core.ValidationError{Form: form, Field: field, Err: core.ErrInvalidAmount}
	}
	return a.value, nil
}

// decodeJSON reads a JSON object into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// bearerToken extracts the session token from the Authorization header.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// parseMonths reads the projection horizon; 0 means the default.
func parseMonths(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("months"))
	if v == "" {
		return 0, nil
	}
	m, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: months must be a number", errBadRequest)
	}
	return m, nil
}

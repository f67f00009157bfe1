package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"orcamento/internal/core"
)

func TestAmountUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    float64
		wantSet bool
		wantErr bool
	}{
		{"number", `{"v":12.5}`, 12.5, true, false},
		{"dot string", `{"v":"12.50"}`, 12.5, true, false},
		{"comma string", `{"v":"12,50"}`, 12.5, true, false},
		{"thousands", `{"v":"1.234,56"}`, 1234.56, true, false},
		{"garbage", `{"v":"abc"}`, 0, true, true},
		{"missing", `{}`, 0, false, true},
		{"null", `{"v":null}`, 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				V Amount `json:"v"`
			}
			if err := json.Unmarshal([]byte(tt.body), &body); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if body.V.Set() != tt.wantSet {
				t.Errorf("Set() = %v, want %v", body.V.Set(), tt.wantSet)
			}
			got, err := body.V.Float(core.FormOneTimeExpense, "value")
			if tt.wantErr {
				var ve *core.ValidationError
				if !errors.As(err, &ve) || ve.Field != "value" || !errors.Is(err, core.ErrInvalidAmount) {
					t.Errorf("Float() error = %v, want invalid amount on value", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("Float() = %v, %v; want %v", got, err, tt.want)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":    "abc",
		"bearer  abc  ": "abc",
		"Basic abc":     "",
		"":              "",
	}
	for header, want := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		if got := bearerToken(r); got != want {
			t.Errorf("bearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestParseMonths(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?months=12", nil)
	if m, err := parseMonths(r); err != nil || m != 12 {
		t.Errorf("parseMonths = %d, %v", m, err)
	}
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	if m, err := parseMonths(r); err != nil || m != 0 {
		t.Errorf("parseMonths without query = %d, %v", m, err)
	}
	r = httptest.NewRequest(http.MethodGet, "/?months=six", nil)
	if _, err := parseMonths(r); !errors.Is(err, errBadRequest) {
		t.Errorf("parseMonths(six) error = %v", err)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  Café\x00\x07 "); got != "Café" {
		t.Errorf("sanitizeInput = %q", got)
	}
}

package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"finanze/internal/core"
	"finanze/internal/period"
)

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"id": "123", "name": "test", "amount": 42.5}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	if id := parser.Get("id"); id != "123" {
		t.Errorf("Get('id') = %q, want '123'", id)
	}

	if name := parser.Get("name"); name != "test" {
		t.Errorf("Get('name') = %q, want 'test'", name)
	}

	if amount := parser.Get("amount"); amount != "42.5" {
		t.Errorf("Get('amount') = %q, want '42.5'", amount)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "id=456&name=form+test&value=100"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}

	if id := parser.Get("id"); id != "456" {
		t.Errorf("Get('id') = %q, want '456'", id)
	}

	if name := parser.Get("name"); name != "form test" {
		t.Errorf("Get('name') = %q, want 'form test'", name)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_Draft(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		want        core.Draft
	}{
		{
			name:        "form wire names",
			body:        "kind=expense&category=Cibo&date=2024-01-15&amount=12%2C50",
			contentType: "application/x-www-form-urlencoded",
			want:        core.Draft{Kind: core.Expense, Category: "Cibo", Date: "2024-01-15", Amount: "12,50"},
		},
		{
			name:        "form italian names",
			body:        "tipo=guadagno&data=2024-01-15&importo=100",
			contentType: "application/x-www-form-urlencoded",
			want:        core.Draft{Kind: core.Income, Date: "2024-01-15", Amount: "100"},
		},
		{
			name:        "json numeric amount",
			body:        `{"kind":"spesa","category":" Casa ","date":"2024-01-15","amount":42.5}`,
			contentType: "application/json",
			want:        core.Draft{Kind: core.Expense, Category: "Casa", Date: "2024-01-15", Amount: "42.5"},
		},
		{
			name:        "unknown kind",
			body:        "kind=gift&amount=1",
			contentType: "application/x-www-form-urlencoded",
			want:        core.Draft{Amount: "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)

			parser := NewRequestBodyParser(req)
			if err := parser.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := parser.Draft(); got != tt.want {
				t.Errorf("Draft() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRequestBodyParser_StripsControlCharacters(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("category=Ci%00bo%07"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := parser.Get("category"); got != "Cibo" {
		t.Errorf("Get('category') = %q, want 'Cibo'", got)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		param   string
		want    int64
		wantErr bool
	}{
		{"7", 7, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/transactions/x/delete", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.param)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			got, err := ParseID(req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseID() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		body    string
		want    period.Period
		wantErr bool
	}{
		{"json body", "/api/period", `{"period":"week"}`, period.ThisWeek, false},
		{"form body", "/api/period", "period=30days", period.Last30Days, false},
		{"query string", "/api/period?period=month", "", period.ThisMonth, false},
		{"missing", "/api/period", "", "", true},
		{"unknown", "/api/period", "period=year", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, tt.target, strings.NewReader(tt.body))
			if strings.HasPrefix(tt.body, "{") {
				req.Header.Set("Content-Type", "application/json")
			} else {
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			}

			got, err := ParsePeriod(req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePeriod() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePeriod() = %q, want %q", got, tt.want)
			}
		})
	}
}

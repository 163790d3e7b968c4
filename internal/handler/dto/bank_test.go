package dto

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDepositRequest_ParseAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"number", `{"amount": 25.50}`, "25.5", false},
		{"integer", `{"amount": 50}`, "50", false},
		{"string", `{"amount": "0.10"}`, "0.1", false},
		{"beyond float precision", `{"amount": 123456789012.34}`, "123456789012.34", false},
		{"missing", `{}`, "", true},
		{"null", `{"amount": null}`, "", true},
		{"word", `{"amount": "ten"}`, "", true},
		{"bool", `{"amount": true}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var req DepositRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			got, err := req.ParseAmount()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDepositRequest_MissingAmountSentinel(t *testing.T) {
	t.Parallel()

	var req DepositRequest
	if _, err := req.ParseAmount(); !errors.Is(err, ErrMissingAmount) {
		t.Fatalf("expected ErrMissingAmount, got %v", err)
	}
}

func TestMoney_MarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"0", `{"balance":0.00}`},
		{"75.5", `{"balance":75.50}`},
		{"1000000020.67", `{"balance":1000000020.67}`},
	}

	for _, tt := range tests {
		body, err := json.Marshal(BalanceResponse{Balance: Money(decimal.RequireFromString(tt.in))})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(body) != tt.want {
			t.Errorf("got %s, want %s", body, tt.want)
		}
	}
}

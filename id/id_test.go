package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/invoicer/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"InvoiceID", id.NewInvoiceID, "inv_"},
		{"LineItemID", id.NewLineItemID, "li_"},
		{"SettingsID", id.NewSettingsID, "cfg_"},
		{"PreviewID", id.NewPreviewID, "prv_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"InvoiceID", id.NewInvoiceID, id.ParseInvoiceID},
		{"LineItemID", id.NewLineItemID, id.ParseLineItemID},
		{"SettingsID", id.NewSettingsID, id.ParseSettingsID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
			}
		})
	}
}

func TestCrossTypeRejection(t *testing.T) {
	if _, err := id.ParseInvoiceID(id.NewLineItemID().String()); err == nil {
		t.Error("ParseInvoiceID accepted a li_ id")
	}
	if _, err := id.ParseSettingsID(id.NewInvoiceID().String()); err == nil {
		t.Error("ParseSettingsID accepted an inv_ id")
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := id.Parse(""); err == nil {
		t.Error("expected error for empty string")
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Error("zero-value ID should be nil")
	}
	if i.String() != "" {
		t.Errorf("expected empty string, got %q", i.String())
	}
}

func TestValueScan(t *testing.T) {
	original := id.NewInvoiceID()
	val, err := original.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var scanned id.ID
	if err := scanned.Scan(val); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if scanned.String() != original.String() {
		t.Errorf("mismatch: %q != %q", scanned.String(), original.String())
	}

	var nilID id.ID
	if val, _ := nilID.Value(); val != nil {
		t.Errorf("expected nil value for nil ID, got %v", val)
	}
	if err := scanned.Scan(nil); err != nil || !scanned.IsNil() {
		t.Errorf("Scan(nil) = %v, nil=%v", err, scanned.IsNil())
	}
}

func TestUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		s := id.NewInvoiceID().String()
		if _, dup := seen[s]; dup {
			t.Fatalf("duplicate id %q", s)
		}
		seen[s] = struct{}{}
	}
}

package sqlite

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xraph/grove"

	"github.com/xraph/invoicer/currency"
	"github.com/xraph/invoicer/id"
	"github.com/xraph/invoicer/record"
	"github.com/xraph/invoicer/settings"
	"github.com/xraph/invoicer/types"
)

// companySlot is the primary key of the single settings row.
const companySlot = "company"

// ==================== Sequence models ====================

type counterModel struct {
	grove.BaseModel `grove:"table:invoicer_sequences"`

	Key       string    `grove:"seq_key,pk"`
	LastValue int64     `grove:"last_value"`
	UpdatedAt time.Time `grove:"updated_at"`
}

// ==================== Record models ====================

// recordModel stores amounts as decimal text so no precision is lost.
// Seq is the rowid and fixes insertion order.
type recordModel struct {
	grove.BaseModel `grove:"table:invoicer_records"`

	Seq            int64     `grove:"seq,pk,autoincrement"`
	ID             string    `grove:"id"`
	OrderNumber    string    `grove:"order_number"`
	InvoiceDate    time.Time `grove:"invoice_date"`
	BillingName    string    `grove:"billing_name"`
	BillingAddress string    `grove:"billing_address"`
	BillingPhone   string    `grove:"billing_phone"`
	Currency       string    `grove:"currency"`
	Subtotal       string    `grove:"subtotal"`
	TaxRate        string    `grove:"tax_rate"`
	TaxAmount      string    `grove:"tax_amount"`
	DiscountAmount string    `grove:"discount_amount"`
	Total          string    `grove:"total"`
	FilePath       string    `grove:"file_path"`
	CreatedAt      time.Time `grove:"created_at"`
}

func toRecordModel(r *record.Record) *recordModel {
	return &recordModel{
		ID:             r.ID.String(),
		OrderNumber:    r.OrderNumber,
		InvoiceDate:    r.InvoiceDate.UTC(),
		BillingName:    r.BillingName,
		BillingAddress: r.BillingAddress,
		BillingPhone:   r.BillingPhone,
		Currency:       string(r.Currency),
		Subtotal:       r.Subtotal.String(),
		TaxRate:        r.TaxRate.String(),
		TaxAmount:      r.TaxAmount.String(),
		DiscountAmount: r.DiscountAmount.String(),
		Total:          r.Total.String(),
		FilePath:       r.FilePath,
		CreatedAt:      r.CreatedAt.UTC(),
	}
}

func fromRecordModel(m *recordModel) (*record.Record, error) {
	recID, err := id.ParseInvoiceID(m.ID)
	if err != nil {
		return nil, err
	}

	amounts := make([]decimal.Decimal, 5)
	for i, s := range []string{m.Subtotal, m.TaxRate, m.TaxAmount, m.DiscountAmount, m.Total} {
		amounts[i], err = decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("invoicer/sqlite: record %s: bad amount %q: %w", m.OrderNumber, s, err)
		}
	}

	return &record.Record{
		Entity:         types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.CreatedAt},
		ID:             recID,
		OrderNumber:    m.OrderNumber,
		InvoiceDate:    m.InvoiceDate.UTC(),
		BillingName:    m.BillingName,
		BillingAddress: m.BillingAddress,
		BillingPhone:   m.BillingPhone,
		Currency:       currency.Code(m.Currency),
		Subtotal:       amounts[0],
		TaxRate:        amounts[1],
		TaxAmount:      amounts[2],
		DiscountAmount: amounts[3],
		Total:          amounts[4],
		FilePath:       m.FilePath,
	}, nil
}

// ==================== Settings models ====================

type settingsModel struct {
	grove.BaseModel `grove:"table:invoicer_settings"`

	Slot            string    `grove:"slot,pk"`
	ID              string    `grove:"id"`
	Name            string    `grove:"company_name"`
	Address         string    `grove:"company_address"`
	Phone           string    `grove:"company_phone"`
	LogoPath        string    `grove:"logo_path"`
	DefaultCurrency string    `grove:"default_currency"`
	OutputDir       string    `grove:"output_folder"`
	CreatedAt       time.Time `grove:"created_at"`
	UpdatedAt       time.Time `grove:"updated_at"`
}

func toSettingsModel(c *settings.Company) *settingsModel {
	return &settingsModel{
		Slot:            companySlot,
		ID:              c.ID.String(),
		Name:            c.Name,
		Address:         c.Address,
		Phone:           c.Phone,
		LogoPath:        c.LogoPath,
		DefaultCurrency: string(c.DefaultCurrency),
		OutputDir:       c.OutputDir,
		CreatedAt:       c.CreatedAt.UTC(),
		UpdatedAt:       c.UpdatedAt.UTC(),
	}
}

func fromSettingsModel(m *settingsModel) (*settings.Company, error) {
	sid, err := id.ParseSettingsID(m.ID)
	if err != nil {
		return nil, err
	}
	return &settings.Company{
		Entity:          types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:              sid,
		Name:            m.Name,
		Address:         m.Address,
		Phone:           m.Phone,
		LogoPath:        m.LogoPath,
		DefaultCurrency: currency.Code(m.DefaultCurrency),
		OutputDir:       m.OutputDir,
	}, nil
}

package mongo

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

// ==================== Sequence models ====================

type counterModel struct {
	grove.BaseModel `grove:"table:invoicer_sequences"`

	Key       string    `grove:"id,pk"      bson:"_id"`
	LastValue int64     `grove:"last_value" bson:"last_value"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

// rowCounter hands out the insertion sequence used to break sort ties.
type rowCounter struct {
	Name  string `bson:"_id"`
	Value int64  `bson:"value"`
}

// ==================== Record models ====================

type recordModel struct {
	grove.BaseModel `grove:"table:invoicer_records"`

	ID             string    `grove:"id,pk"           bson:"_id"`
	Seq            int64     `grove:"seq"             bson:"seq"`
	OrderNumber    string    `grove:"order_number"    bson:"order_number"`
	InvoiceDate    time.Time `grove:"invoice_date"    bson:"invoice_date"`
	BillingName    string    `grove:"billing_name"    bson:"billing_name"`
	BillingAddress string    `grove:"billing_address" bson:"billing_address"`
	BillingPhone   string    `grove:"billing_phone"   bson:"billing_phone"`
	Currency       string    `grove:"currency"        bson:"currency"`
	Subtotal       string    `grove:"subtotal"        bson:"subtotal"`
	TaxRate        string    `grove:"tax_rate"        bson:"tax_rate"`
	TaxAmount      string    `grove:"tax_amount"      bson:"tax_amount"`
	DiscountAmount string    `grove:"discount_amount" bson:"discount_amount"`
	Total          string    `grove:"total"           bson:"total"`
	FilePath       string    `grove:"file_path"       bson:"file_path"`
	CreatedAt      time.Time `grove:"created_at"      bson:"created_at"`
}

func toRecordModel(r *record.Record, seq int64) *recordModel {
	return &recordModel{
		ID:             r.ID.String(),
		Seq:            seq,
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

	parse := func(field, s string) (decimal.Decimal, error) {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invoicer/mongo: record %s: bad %s %q: %w", m.OrderNumber, field, s, err)
		}
		return d, nil
	}

	r := &record.Record{
		Entity:         types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.CreatedAt},
		ID:             recID,
		OrderNumber:    m.OrderNumber,
		InvoiceDate:    m.InvoiceDate.UTC(),
		BillingName:    m.BillingName,
		BillingAddress: m.BillingAddress,
		BillingPhone:   m.BillingPhone,
		Currency:       currency.Code(m.Currency),
		FilePath:       m.FilePath,
	}
	if r.Subtotal, err = parse("subtotal", m.Subtotal); err != nil {
		return nil, err
	}
	if r.TaxRate, err = parse("tax_rate", m.TaxRate); err != nil {
		return nil, err
	}
	if r.TaxAmount, err = parse("tax_amount", m.TaxAmount); err != nil {
		return nil, err
	}
	if r.DiscountAmount, err = parse("discount_amount", m.DiscountAmount); err != nil {
		return nil, err
	}
	if r.Total, err = parse("total", m.Total); err != nil {
		return nil, err
	}
	return r, nil
}

// ==================== Settings models ====================

// settingsModel is a singleton document whose _id is always companySlot.
type settingsModel struct {
	grove.BaseModel `grove:"table:invoicer_settings"`

	Slot            string    `grove:"id,pk"            bson:"_id"`
	SettingsID      string    `grove:"settings_id"      bson:"settings_id"`
	Name            string    `grove:"company_name"     bson:"company_name"`
	Address         string    `grove:"company_address"  bson:"company_address"`
	Phone           string    `grove:"company_phone"    bson:"company_phone"`
	LogoPath        string    `grove:"logo_path"        bson:"logo_path"`
	DefaultCurrency string    `grove:"default_currency" bson:"default_currency"`
	OutputDir       string    `grove:"output_folder"    bson:"output_folder"`
	CreatedAt       time.Time `grove:"created_at"       bson:"created_at"`
	UpdatedAt       time.Time `grove:"updated_at"       bson:"updated_at"`
}

func fromSettingsModel(m *settingsModel) (*settings.Company, error) {
	sid, err := id.ParseSettingsID(m.SettingsID)
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

// Package settings holds the company profile printed on every invoice.
package settings

import (
	"context"

	"github.com/xraph/invoicer/currency"
	"github.com/xraph/invoicer/id"
	"github.com/xraph/invoicer/types"
)

// Company is the issuing company's profile. Only one is stored.
type Company struct {
	types.Entity
	ID              id.SettingsID `json:"id"`
	Name            string        `json:"company_name"`
	Address         string        `json:"company_address"`
	Phone           string        `json:"company_phone"`
	LogoPath        string        `json:"logo_path,omitempty"`
	DefaultCurrency currency.Code `json:"default_currency"`
	OutputDir       string        `json:"output_folder"`
}

// Store persists the company settings. GetSettings returns a not-found
// error until SaveSettings has been called once.
type Store interface {
	SaveSettings(ctx context.Context, c *Company) error
	GetSettings(ctx context.Context) (*Company, error)
}

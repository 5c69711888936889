package model

import "time"

// AppSettings stores the entire settings document as one JSON column in a single row.
type AppSettings struct {
	ID        uint      `gorm:"primaryKey"`
	Data      Settings  `gorm:"serializer:json;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type CompanySettings struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

type RegionalSettings struct {
	Currency       string `json:"currency"`
	CurrencySymbol string `json:"currencySymbol"`
	Timezone       string `json:"timezone"`
	DateFormat     string `json:"dateFormat"`
}

// TaxSettings: Rate is a whole percentage.
type TaxSettings struct {
	Enabled bool  `json:"enabled"`
	Rate    int64 `json:"rate"`
}

type AppearanceSettings struct {
	Theme    string `json:"theme"`
	Language string `json:"language"`
}

// DiscountSettings: Value is a whole percentage of the subtotal.
type DiscountSettings struct {
	Enabled bool   `json:"enabled"`
	Value   int64  `json:"value"`
	Label   string `json:"label"`
}

// InvoicingSettings: DueDays is added to the creation date; 0 means due the same day.
type InvoicingSettings struct {
	DueDays int `json:"dueDays"`
}

// BalanceSettings: DebtLimit is the deepest negative balance a withdrawal may
// produce, in piasters. Nil leaves debt unconstrained.
type BalanceSettings struct {
	DebtLimit *int64 `json:"debtLimit"`
}

// Settings is the application settings document.
type Settings struct {
	Company    CompanySettings    `json:"company"`
	Regional   RegionalSettings   `json:"regional"`
	Tax        TaxSettings        `json:"tax"`
	Appearance AppearanceSettings `json:"appearance"`
	Discounts  DiscountSettings   `json:"discounts"`
	Invoicing  InvoicingSettings  `json:"invoicing"`
	Balance    BalanceSettings    `json:"balance"`
}

// DefaultSettings returns the document used until settings are first saved.
func DefaultSettings(currency, symbol string, dueDays int) Settings {
	return Settings{
		Company:    CompanySettings{Name: "My Venue"},
		Regional:   RegionalSettings{Currency: currency, CurrencySymbol: symbol, Timezone: "UTC", DateFormat: "2006-01-02"},
		Appearance: AppearanceSettings{Theme: "light", Language: "en"},
		Discounts:  DiscountSettings{Label: "Discount"},
		Invoicing:  InvoicingSettings{DueDays: dueDays},
	}
}

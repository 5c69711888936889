package model

// CustomerType mirrors the customer's current plan.
type CustomerType string

const (
	CustomerVisitor     CustomerType = "visitor"
	CustomerWeekly      CustomerType = "weekly"
	CustomerHalfMonthly CustomerType = "half-monthly"
	CustomerMonthly     CustomerType = "monthly"
)

// Customer is a registered client of the venue.
// Balance is a cached projection: credit entries minus unpaid sale invoices.
// Negative means the customer owes the business.
type Customer struct {
	BaseModel
	HumanID      string       `gorm:"uniqueIndex;size:16;not null" json:"humanId"`
	Name         string       `gorm:"size:256;not null" json:"name"`
	Phone        string       `gorm:"size:32;not null" json:"phone"`
	Email        *string      `gorm:"size:256" json:"email"`
	CustomerType CustomerType `gorm:"size:16;not null;default:visitor" json:"customerType"`
	Balance      int64        `gorm:"not null;default:0" json:"balance"`
	Notes        *string      `json:"notes"`
}

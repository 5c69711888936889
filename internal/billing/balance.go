package billing

import "venue-billing-backend/internal/model"

// A customer's balance is sum(credit entries) - outstanding(sale invoices).
// Positive means the business holds credit for the customer; negative means
// the customer owes.

// Outstanding sums what is still owed on the customer's unpaid sale invoices.
func Outstanding(invoices []model.Invoice) int64 {
	var sum int64
	for i := range invoices {
		inv := &invoices[i]
		if inv.InvoiceType != model.InvoiceSale && inv.InvoiceType != "" {
			continue
		}
		if NormalizeStatus(inv.Status) != model.InvoiceUnpaid {
			continue
		}
		sum += inv.Total - inv.PaidAmount
	}
	return sum
}

// AvailableCredit is the signed sum of balance entries.
func AvailableCredit(entries []model.BalanceEntry) int64 {
	var sum int64
	for _, e := range entries {
		sum += e.Amount
	}
	return sum
}

// CustomerBalance derives the balance from the entry and invoice history.
func CustomerBalance(entries []model.BalanceEntry, invoices []model.Invoice) int64 {
	return AvailableCredit(entries) - Outstanding(invoices)
}

// CheckCreditPayment fails when credit cannot cover a balance-method payment.
func CheckCreditPayment(credit, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if credit < amount {
		return ErrInsufficientBalance
	}
	return nil
}

// CheckWithdrawal fails when withdrawing amount would push balance below
// -debtLimit. A nil limit allows any debt.
func CheckWithdrawal(balance, amount int64, debtLimit *int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if debtLimit != nil && balance-amount < -*debtLimit {
		return ErrInsufficientBalance
	}
	return nil
}

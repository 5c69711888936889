package report

import "sort"

// TopCustomer ranks a customer by money actually paid.
type TopCustomer struct {
	CustomerID   string `json:"customerId"`
	Name         string `json:"name"`
	TotalPaid    int64  `json:"totalPaid"`
	InvoiceCount int    `json:"invoiceCount"`
}

// TopCustomers returns the n customers with the highest paid amount on sale
// invoices, descending. Ties are broken by name.
func TopCustomers(snap *Snapshot, n int) []TopCustomer {
	if n <= 0 {
		return nil
	}
	byID := make(map[string]*TopCustomer)
	for i := range snap.Invoices {
		inv := &snap.Invoices[i]
		if !countsAsRevenue(inv) || inv.PaidAmount <= 0 {
			continue
		}
		tc, ok := byID[inv.CustomerID]
		if !ok {
			tc = &TopCustomer{CustomerID: inv.CustomerID, Name: inv.CustomerName}
			byID[inv.CustomerID] = tc
		}
		tc.TotalPaid += inv.PaidAmount
		tc.InvoiceCount++
	}
	for _, c := range snap.Customers {
		if tc, ok := byID[c.ID]; ok {
			tc.Name = c.Name
		}
	}

	list := make([]TopCustomer, 0, len(byID))
	for _, tc := range byID {
		list = append(list, *tc)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].TotalPaid != list[j].TotalPaid {
			return list[i].TotalPaid > list[j].TotalPaid
		}
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].CustomerID < list[j].CustomerID
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}

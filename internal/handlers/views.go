package handlers

import (
	"library/internal/models"
	"library/internal/money"
	"library/internal/services"
	"library/internal/store"
)

// Response views shadow the integer money fields of the models with their
// decimal string rendering.

type accountView struct {
	models.Account
	Credits string `json:"credits"`
}

func newAccountView(a models.Account) accountView {
	return accountView{Account: a, Credits: money.FormatMinor(a.Credits)}
}

type titleView struct {
	models.Title
	Price      string `json:"price"`
	CostPerDay string `json:"cost_per_day"`
}

func newTitleView(t models.Title) titleView {
	return titleView{
		Title:      t,
		Price:      money.FormatMinor(t.Price),
		CostPerDay: money.FormatMinor(t.CostPerDay),
	}
}

type listingView struct {
	titleView
	AvailableCopies int64 `json:"available_copies"`
}

type titleDetailView struct {
	titleView
	AvailableCopies int64               `json:"available_copies"`
	Rating          store.RatingSummary `json:"rating"`
}

type purchaseView struct {
	models.PurchaseRecord
	PricePaid string `json:"price_paid"`
}

func newPurchaseViews(rows []models.PurchaseRecord) []purchaseView {
	out := make([]purchaseView, 0, len(rows))
	for _, row := range rows {
		out = append(out, purchaseView{PurchaseRecord: row, PricePaid: money.FormatMinor(row.PricePaid)})
	}
	return out
}

type saleView struct {
	Purchase purchaseView `json:"purchase"`
	Credits  string       `json:"credits"`
}

func newSaleView(res services.SaleResult) saleView {
	return saleView{
		Purchase: purchaseView{PurchaseRecord: res.Purchase, PricePaid: money.FormatMinor(res.Purchase.PricePaid)},
		Credits:  money.FormatMinor(res.Credits),
	}
}

type returnView struct {
	Copy    models.Copy `json:"copy"`
	Refund  string      `json:"refund"`
	Credits string      `json:"credits"`
}

type dueLoanView struct {
	services.DueLoan
	Accrued string `json:"accrued"`
}

type dueView struct {
	Loans []dueLoanView `json:"loans"`
	Total string        `json:"total"`
}

func newDueView(due services.DueSummary) dueView {
	loans := make([]dueLoanView, 0, len(due.Loans))
	for _, loan := range due.Loans {
		loans = append(loans, dueLoanView{DueLoan: loan, Accrued: money.FormatMinor(loan.Accrued)})
	}
	return dueView{Loans: loans, Total: money.FormatMinor(due.Total)}
}

type salesView struct {
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	Count   int64  `json:"sales_count"`
	Revenue string `json:"revenue"`
}

package catalog

import (
	"github.com/shopspring/decimal"
)

// Product is a service offering sold through the site. Prices are quoted in
// whole Danish kroner. Custom-quote offerings have no price and no Stripe
// price id, they route visitors to the contact form instead of checkout.
type Product struct {
	ID             string
	StripePriceID  string
	Name           string
	Description    string
	Price          *decimal.Decimal
	CurrencySymbol string
}

// Purchasable reports whether the product can go through hosted checkout.
func (p Product) Purchasable() bool {
	return p.StripePriceID != "" && p.Price != nil
}

func price(kroner int64) *decimal.Decimal {
	d := decimal.NewFromInt(kroner)
	return &d
}

var products = []Product{
	{
		ID:            "prod_website",
		StripePriceID: "price_website",
		Name:          "Ny Hjemmeside",
		Description: "Få en professionel og moderne hjemmeside, der præsenterer din virksomhed " +
			"klart og troværdigt. Designet til at fungere perfekt på mobil, tablet og computer, " +
			"og nem at udvide senere.",
		Price:          price(3999),
		CurrencySymbol: "kr",
	},
	{
		ID:            "prod_local_seo",
		StripePriceID: "price_local_seo",
		Name:          "Lokal SEO – Første side / Top 3 på Google",
		Description: "Bliv fundet af lokale kunder, når de søger på Google. Vi får din virksomhed " +
			"synlig på første side af Google, og blandt top 3, ved relevante lokale søgninger.",
		Price:          price(2999),
		CurrencySymbol: "kr",
	},
	{
		ID:   "prod_custom",
		Name: "Brugerdefineret",
		Description: "Prisen fastsættes individuelt ud fra opgavens omfang, behov og mål. " +
			"Kontakt os for en kort dialog og et konkret tilbud.",
		CurrencySymbol: "kr",
	},
}

// List returns the site's offerings in display order.
func List() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

// FindByPriceID resolves a Stripe price id to its product.
func FindByPriceID(priceID string) (Product, bool) {
	if priceID == "" {
		return Product{}, false
	}
	for _, p := range products {
		if p.StripePriceID == priceID {
			return p, true
		}
	}
	return Product{}, false
}

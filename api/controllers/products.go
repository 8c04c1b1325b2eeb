package controllers

import (
	"net/http"

	"github.com/busybiz/busybiz-backend/api/responses"
	"github.com/busybiz/busybiz-backend/internal/catalog"
)

type productResponse struct {
	ID             string  `json:"id"`
	PriceID        string  `json:"price_id,omitempty"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	PricePerUnit   *string `json:"price_per_unit,omitempty"`
	CurrencySymbol string  `json:"currency_symbol"`
}

type productListResponse struct {
	Products []productResponse `json:"products"`
}

// ListProducts returns the static service catalog shown on the site.
func ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := catalog.List()
		out := make([]productResponse, 0, len(items))
		for _, p := range items {
			resp := productResponse{
				ID:             p.ID,
				PriceID:        p.StripePriceID,
				Name:           p.Name,
				Description:    p.Description,
				CurrencySymbol: p.CurrencySymbol,
			}
			if p.Price != nil {
				price := p.Price.StringFixed(2)
				resp.PricePerUnit = &price
			}
			out = append(out, resp)
		}
		responses.WriteSuccess(w, productListResponse{Products: out})
	}
}

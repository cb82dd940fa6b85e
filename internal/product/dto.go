// AngelaMos | 2026
// dto.go

package product

// ProductResponse keeps the capitalized keys existing clients read.
type ProductResponse struct {
	ID       int64   `json:"id"`
	Product  string  `json:"Product"`
	Sales    int64   `json:"Sales"`
	Category *string `json:"Category"`
	Revenue  float64 `json:"Revenue"`
	Profit   float64 `json:"Profit"`
}

type ListResponse struct {
	Total int               `json:"total"`
	Items []ProductResponse `json:"items"`
}

type CreateResponse struct {
	Status string            `json:"status"`
	Added  int               `json:"added"`
	Items  []ProductResponse `json:"items"`
}

type UpdateResponse struct {
	Status string          `json:"status"`
	Item   ProductResponse `json:"item"`
}

type DeleteResponse struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}

func ToProductResponse(p *Product) ProductResponse {
	return ProductResponse{
		ID:       p.ID,
		Product:  p.Name,
		Sales:    p.Sales,
		Category: p.Category,
		Revenue:  p.Revenue,
		Profit:   p.Profit,
	}
}

func ToProductResponses(products []Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts_SeededCatalog(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != seededProducts {
		t.Fatalf("expected %d products, got %d", seededProducts, len(products))
	}

	for _, p := range products {
		if p.FinalPrice > p.Price {
			t.Errorf("product %s: final price %v exceeds price %v", p.ID, p.FinalPrice, p.Price)
		}
		if p.StockStatus == "" {
			t.Errorf("product %s: missing stock status", p.ID)
		}
	}
}

func TestGetProduct_DiscountApplied(t *testing.T) {
	// The seeded leather journal carries a 15% discount with an active window.
	resp := doGet(t, "/api/products/5f4e1f6a-1f2b-4a64-9a6e-3d1c9f6b2b02")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	p := decodeJSON[productResponse](t, resp)
	if !p.DiscountActive {
		t.Fatal("expected active discount")
	}
	// 39.50 at 15% off, rounded to cents.
	if p.FinalPrice != 33.58 {
		t.Errorf("final price: got %v, want 33.58", p.FinalPrice)
	}
}

func TestGetProduct_StockStatuses(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{"out of stock scarf", "b7c9e0d1-2a35-46f7-8c9d-1e2f3a4b5c04", "out_of_stock"},
		{"low stock coffee set", "8a1d3c2e-7b44-4d1c-b3a1-6e5f4a7c8d03", "low_stock"},
		{"in stock hamper", "d4e5f6a7-b8c9-40d1-a2b3-c4d5e6f7a805", "in_stock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doGet(t, "/api/products/"+tt.id)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			p := decodeJSON[productResponse](t, resp)
			if p.StockStatus != tt.want {
				t.Errorf("stock status: got %q, want %q", p.StockStatus, tt.want)
			}
		})
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/00000000-0000-0000-0000-000000000000")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Code != http.StatusNotFound {
		t.Errorf("error code: got %d, want 404", body.Code)
	}
}

func TestFeaturedProducts(t *testing.T) {
	resp := doGet(t, "/api/products/featured")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) == 0 {
		t.Fatal("expected at least one featured product")
	}
}

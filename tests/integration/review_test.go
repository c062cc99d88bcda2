//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

type reviewUpsertResponse struct {
	Review struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	} `json:"review"`
	Product struct {
		AverageRating float64 `json:"averageRating"`
		RatingCount   int     `json:"ratingCount"`
	} `json:"product"`
}

// registerUser creates a fresh account and returns its token. Emails are
// uniquified so tests stay independent.
func registerUser(t *testing.T, name string) string {
	t.Helper()

	email := fmt.Sprintf("%s-%d@example.com", name, time.Now().UnixNano())
	resp := doPost(t, "/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": "password-12345",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}
	return decodeJSON[authResponse](t, resp).Token
}

func TestReview_AggregateVisibleOnProduct(t *testing.T) {
	const productID = "c2ae4b7e-9d05-4c0f-8a4e-0f0f2a6d2a01"
	token := registerUser(t, "reviewer")

	resp := doRequest(t, http.MethodPut, "/api/products/"+productID+"/reviews", map[string]any{
		"rating":  5,
		"comment": "smells wonderful",
	}, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upsert review: expected 200, got %d", resp.StatusCode)
	}
	out := decodeJSON[reviewUpsertResponse](t, resp)
	resp.Body.Close()

	if out.Product.RatingCount < 1 {
		t.Fatalf("rating count: got %d, want >= 1", out.Product.RatingCount)
	}

	// The recompute happens within the same operation, so an immediate read
	// must observe the updated aggregate.
	resp = doGet(t, "/api/products/"+productID)
	defer resp.Body.Close()

	p := decodeJSON[productResponse](t, resp)
	if p.RatingCount != out.Product.RatingCount {
		t.Errorf("product rating count: got %d, want %d", p.RatingCount, out.Product.RatingCount)
	}
	if p.AverageRating != out.Product.AverageRating {
		t.Errorf("product average rating: got %v, want %v", p.AverageRating, out.Product.AverageRating)
	}
}

func TestReview_RepeatReviewReplacesPrevious(t *testing.T) {
	const productID = "d4e5f6a7-b8c9-40d1-a2b3-c4d5e6f7a805"
	token := registerUser(t, "repeat-reviewer")

	resp := doRequest(t, http.MethodPut, "/api/products/"+productID+"/reviews", map[string]any{
		"rating": 5,
	}, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first review: expected 200, got %d", resp.StatusCode)
	}
	first := decodeJSON[reviewUpsertResponse](t, resp)
	resp.Body.Close()

	resp = doRequest(t, http.MethodPut, "/api/products/"+productID+"/reviews", map[string]any{
		"rating": 3,
	}, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second review: expected 200, got %d", resp.StatusCode)
	}
	second := decodeJSON[reviewUpsertResponse](t, resp)

	if second.Product.RatingCount != first.Product.RatingCount {
		t.Errorf("rating count changed on repeat review: %d -> %d",
			first.Product.RatingCount, second.Product.RatingCount)
	}
	if second.Review.Rating != 3 {
		t.Errorf("rating: got %d, want 3", second.Review.Rating)
	}
}

func TestReview_RequiresAuth(t *testing.T) {
	resp := doRequest(t, http.MethodPut,
		"/api/products/c2ae4b7e-9d05-4c0f-8a4e-0f0f2a6d2a01/reviews",
		map[string]any{"rating": 4}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

//go:build integration

package integration

import (
	"net/http"
	"regexp"
	"testing"
)

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{8}-\d{6}$`)

func TestCreateOrder_Succeeds(t *testing.T) {
	resp := doPost(t, "/api/orders", map[string]any{
		"customer": map[string]string{
			"name":  "Grace Hopper",
			"email": "grace@example.com",
		},
		"items": []map[string]any{
			{"productId": "d4e5f6a7-b8c9-40d1-a2b3-c4d5e6f7a805", "quantity": 2},
		},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	o := decodeJSON[orderResponse](t, resp)
	if !orderNumberPattern.MatchString(o.OrderNumber) {
		t.Errorf("order number %q does not match expected format", o.OrderNumber)
	}
	if o.Status != "pending" {
		t.Errorf("status: got %q, want pending", o.Status)
	}
	// 2 x 19.95
	if o.TotalAmount != "39.90" {
		t.Errorf("total: got %q, want 39.90", o.TotalAmount)
	}
}

func TestCreateOrder_SnapshotsDiscountedPrice(t *testing.T) {
	resp := doPost(t, "/api/orders", map[string]any{
		"customer": map[string]string{
			"name":  "Grace Hopper",
			"email": "grace@example.com",
		},
		"items": []map[string]any{
			{"productId": "5f4e1f6a-1f2b-4a64-9a6e-3d1c9f6b2b02", "quantity": 1},
		},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	o := decodeJSON[orderResponse](t, resp)
	if len(o.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(o.Items))
	}
	// The 15% discount on the 39.50 journal applies at order time.
	if o.Items[0].UnitPrice != "33.58" {
		t.Errorf("unit price: got %q, want 33.58", o.Items[0].UnitPrice)
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	resp := doPost(t, "/api/orders", map[string]any{
		"customer": map[string]string{"name": "Grace", "email": "grace@example.com"},
		"items": []map[string]any{
			{"productId": "00000000-0000-0000-0000-000000000000", "quantity": 1},
		},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_MissingCustomer(t *testing.T) {
	resp := doPost(t, "/api/orders", map[string]any{
		"items": []map[string]any{
			{"productId": "d4e5f6a7-b8c9-40d1-a2b3-c4d5e6f7a805", "quantity": 1},
		},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestOrderLifecycle_AdminStatusUpdate(t *testing.T) {
	token := loginAdmin(t)

	resp := doPost(t, "/api/orders", map[string]any{
		"customer": map[string]string{"name": "Grace", "email": "grace@example.com"},
		"items": []map[string]any{
			{"productId": "c2ae4b7e-9d05-4c0f-8a4e-0f0f2a6d2a01", "quantity": 1},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order: expected 201, got %d", resp.StatusCode)
	}
	o := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	resp = doRequest(t, http.MethodPatch, "/api/orders/"+o.ID+"/status", map[string]string{
		"status": "dispatched",
		"notes":  "left warehouse",
	}, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status: expected 200, got %d", resp.StatusCode)
	}

	updated := decodeJSON[orderResponse](t, resp)
	if updated.Status != "dispatched" {
		t.Errorf("status: got %q, want dispatched", updated.Status)
	}
}

func TestOrderList_RequiresAdmin(t *testing.T) {
	resp := doGet(t, "/api/orders")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestOrderStatus_RejectsUnknownValue(t *testing.T) {
	token := loginAdmin(t)

	resp := doPost(t, "/api/orders", map[string]any{
		"customer": map[string]string{"name": "Grace", "email": "grace@example.com"},
		"items": []map[string]any{
			{"productId": "c2ae4b7e-9d05-4c0f-8a4e-0f0f2a6d2a01", "quantity": 1},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order: expected 201, got %d", resp.StatusCode)
	}
	o := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	resp = doRequest(t, http.MethodPatch, "/api/orders/"+o.ID+"/status", map[string]string{
		"status": "teleported",
	}, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

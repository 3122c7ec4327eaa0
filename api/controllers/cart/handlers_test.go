package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Nishantvt5/merch-app/api/middleware"
	cartsvc "github.com/Nishantvt5/merch-app/internal/cart"
	"github.com/Nishantvt5/merch-app/pkg/db/models"
	"github.com/Nishantvt5/merch-app/pkg/enums"
	pkgerrors "github.com/Nishantvt5/merch-app/pkg/errors"
)

type addCall struct {
	userID    uuid.UUID
	productID uuid.UUID
	quantity  int
}

type stubCartService struct {
	view     *cartsvc.CartDTO
	result   *cartsvc.MutationResult
	err      error
	lastAdd  addCall
	lastSet  int
	lastItem uuid.UUID
}

func (s *stubCartService) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return &models.Cart{ID: uuid.New(), UserID: userID}, nil
}

func (s *stubCartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*cartsvc.MutationResult, error) {
	s.lastAdd = addCall{userID: userID, productID: productID, quantity: quantity}
	return s.result, s.err
}

func (s *stubCartService) SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*cartsvc.MutationResult, error) {
	s.lastItem = itemID
	s.lastSet = quantity
	return s.result, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*cartsvc.MutationResult, error) {
	s.lastItem = itemID
	return s.result, s.err
}

func (s *stubCartService) View(ctx context.Context, userID uuid.UUID) (*cartsvc.CartDTO, error) {
	if s.view == nil {
		return &cartsvc.CartDTO{Items: []cartsvc.ItemDTO{}, TotalPrice: "0.00"}, nil
	}
	return s.view, nil
}

func authed(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func withItemParam(req *http.Request, itemID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("itemID", itemID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCartFetchRequiresUser(t *testing.T) {
	rec := httptest.NewRecorder()
	CartFetch(&stubCartService{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestCartFetchSuccess(t *testing.T) {
	cartID := uuid.New()
	svc := &stubCartService{view: &cartsvc.CartDTO{CartID: &cartID, Items: []cartsvc.ItemDTO{}, TotalQuantity: 3, TotalPrice: "30.00"}}

	rec := httptest.NewRecorder()
	CartFetch(svc, nil).ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), uuid.New()))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var envelope struct {
		Data cartsvc.CartDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.CartID == nil || *envelope.Data.CartID != cartID || envelope.Data.TotalPrice != "30.00" {
		t.Fatalf("unexpected cart %+v", envelope.Data)
	}
}

func TestCartAddItemDefaultsQuantity(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	svc := &stubCartService{result: &cartsvc.MutationResult{
		Outcome:     enums.CartOutcomeAdded,
		ProductName: "Widget",
		Message:     "Widget added to your cart.",
	}}

	body := `{"product_id":"` + productID.String() + `"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), userID)
	rec := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastAdd != (addCall{userID: userID, productID: productID, quantity: 1}) {
		t.Fatalf("unexpected add call %+v", svc.lastAdd)
	}

	var envelope struct {
		Data struct {
			Outcome string           `json:"outcome"`
			Message string           `json:"message"`
			Cart    *cartsvc.CartDTO `json:"cart"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Outcome != "added" || envelope.Data.Message != "Widget added to your cart." {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
	if envelope.Data.Cart == nil {
		t.Fatalf("expected refreshed cart in response")
	}
}

func TestCartAddItemHonorsQuantity(t *testing.T) {
	svc := &stubCartService{result: &cartsvc.MutationResult{Outcome: enums.CartOutcomeUpdated}}
	body := `{"product_id":"` + uuid.NewString() + `","quantity":3}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), uuid.New())
	rec := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if svc.lastAdd.quantity != 3 {
		t.Fatalf("expected quantity 3 got %d", svc.lastAdd.quantity)
	}
}

func TestCartAddItemRequiresProduct(t *testing.T) {
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"quantity":2}`)), uuid.New())
	rec := httptest.NewRecorder()
	CartAddItem(&stubCartService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCartAddItemUnknownProduct(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.NotFound("product")}
	body := `{"product_id":"` + uuid.NewString() + `"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), uuid.New())
	rec := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestCartSetQuantityPassesValue(t *testing.T) {
	itemID := uuid.New()
	svc := &stubCartService{result: &cartsvc.MutationResult{Outcome: enums.CartOutcomeRemoved, Message: "Widget removed from your cart."}}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/"+itemID.String(), strings.NewReader(`{"quantity":0}`))
	req = withItemParam(authed(req, uuid.New()), itemID.String())
	rec := httptest.NewRecorder()
	CartSetQuantity(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastItem != itemID || svc.lastSet != 0 {
		t.Fatalf("unexpected set call %s %d", svc.lastItem, svc.lastSet)
	}
}

func TestCartSetQuantityRequiresQuantity(t *testing.T) {
	itemID := uuid.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/"+itemID.String(), strings.NewReader(`{}`))
	req = withItemParam(authed(req, uuid.New()), itemID.String())
	rec := httptest.NewRecorder()
	CartSetQuantity(&stubCartService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCartRemoveItemRejectsBadID(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/nope", nil)
	req = withItemParam(authed(req, uuid.New()), "nope")
	rec := httptest.NewRecorder()
	CartRemoveItem(&stubCartService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCartRemoveItemNotOwned(t *testing.T) {
	itemID := uuid.New()
	svc := &stubCartService{err: pkgerrors.NotFound("cart item")}
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/"+itemID.String(), nil)
	req = withItemParam(authed(req, uuid.New()), itemID.String())
	rec := httptest.NewRecorder()
	CartRemoveItem(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	if svc.lastItem != itemID {
		t.Fatalf("expected item id to reach service")
	}
}

package httptransport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"

	"github.com/mockmart/techstore/internal/shopapi/catalog"
	"github.com/mockmart/techstore/pkg/httpx"
)

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

func (h *HTTPTransport) listProducts(w http.ResponseWriter, r *http.Request) {
	var q catalog.Query
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "Invalid query parameters")
		return
	}

	httpx.JSON(w, http.StatusOK, h.catalog.List(q))
}

func (h *HTTPTransport) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "Invalid product id")
		return
	}

	product, err := h.catalog.Get(id)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, httpx.CategoryNotFound, "Product not found")
		return
	}

	httpx.JSON(w, http.StatusOK, product)
}

func (h *HTTPTransport) categories(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, h.catalog.Categories())
}

func (h *HTTPTransport) createProduct(w http.ResponseWriter, r *http.Request) {
	var np catalog.NewProduct
	if err := json.NewDecoder(r.Body).Decode(&np); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "Invalid JSON body")
		return
	}
	if np.Name == "" || np.Price <= 0 || np.Category == "" {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "name, price and category are required")
		return
	}

	product, err := h.catalog.Create(np)
	if err != nil {
		if errors.Is(err, catalog.ErrDuplicateName) {
			httpx.Error(w, http.StatusConflict, httpx.CategoryConflict, "Product with this name already exists")
			return
		}
		slog.ErrorContext(r.Context(), "Product creation failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.CategoryUpstream, "Failed to create product")
		return
	}

	slog.InfoContext(r.Context(), "Product created", "product_id", product.ID, "name", product.Name)
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *HTTPTransport) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "Invalid product id")
		return
	}

	var patch catalog.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "Invalid JSON body")
		return
	}

	product, err := h.catalog.Update(id, patch)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, httpx.CategoryNotFound, "Product not found")
		return
	}

	httpx.JSON(w, http.StatusOK, product)
}

func (h *HTTPTransport) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "Invalid product id")
		return
	}

	if err := h.catalog.Delete(id); err != nil {
		httpx.Error(w, http.StatusNotFound, httpx.CategoryNotFound, "Product not found")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

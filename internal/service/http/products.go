package httpsvc

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
	"github.com/vladislavdragonenkov/titan-coffee/internal/validation"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

// productByCode возвращает товар из URL или ErrNotFound с понятным сообщением.
func (h *Handler) productByCode(r *http.Request) (domain.Product, error) {
	code := chi.URLParam(r, "productCode")
	product, found, err := h.catalog.FindByCode(r.Context(), code)
	if err != nil {
		return domain.Product{}, err
	}
	if !found {
		return domain.Product{}, describeNotFound(domain.ErrNotFound, "Product with productCode %s not found", code)
	}
	return product, nil
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.productByCode(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *Handler) createProducts(w http.ResponseWriter, r *http.Request) {
	entries, err := readBatch(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result := h.catalog.AddBatch(r.Context(), entries)
	status := batchStatus(result)

	response := productBatchResponse{
		Message:       "All products saved successfully",
		SavedProducts: toProductResponses(result.Saved),
	}
	switch status {
	case http.StatusServiceUnavailable:
		response.Message = msgUnavailable
		response.Errors = toBatchErrors(result.Rejected)
	case http.StatusBadRequest:
		response.Message = "Some products failed validation or creation"
		response.Errors = toBatchErrors(result.Rejected)
	}
	writeJSON(w, status, response)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.productByCode(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	fields, err := readFields(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	upd, err := validation.ProductUpdate(fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	updated, err := h.catalog.Update(r.Context(), product.ID, upd)
	if err != nil {
		h.writeError(w, r, describeNotFound(err, "Product with productCode %s not found", product.ProductCode))
		return
	}
	writeJSON(w, http.StatusOK, productMutationResponse{
		Message: "Product updated successfully",
		Product: toProductResponse(updated),
	})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.productByCode(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	removed, err := h.catalog.Remove(r.Context(), product.ID)
	if err != nil {
		h.writeError(w, r, describeNotFound(err, "Product with productCode %s not found", product.ProductCode))
		return
	}
	writeJSON(w, http.StatusOK, productMutationResponse{
		Message: "Product deleted successfully",
		Product: toProductResponse(removed),
	})
}

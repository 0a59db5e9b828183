package httpsvc

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vladislavdragonenkov/titan-coffee/internal/validation"
)

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.ledger.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.ledger.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, describeNotFound(err, "Order %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// createOrders принимает один заказ или массив; каждый элемент обрабатывается независимо.
func (h *Handler) createOrders(w http.ResponseWriter, r *http.Request) {
	entries, err := readBatch(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result := h.ledger.AddBatch(r.Context(), entries)
	status := batchStatus(result)

	response := orderBatchResponse{
		Message:     "All orders saved successfully",
		SavedOrders: toOrderResponses(result.Saved),
	}
	switch status {
	case http.StatusServiceUnavailable:
		response.Message = msgUnavailable
		response.Errors = toBatchErrors(result.Rejected)
	case http.StatusBadRequest:
		response.Message = "Some orders failed validation"
		response.Errors = toBatchErrors(result.Rejected)
	}
	writeJSON(w, status, response)
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	fields, err := readFields(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	upd, err := validation.OrderUpdate(fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	updated, err := h.ledger.Update(r.Context(), id, upd)
	if err != nil {
		h.writeError(w, r, describeNotFound(err, "Order %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, orderMutationResponse{
		Message: "Order updated successfully",
		Order:   toOrderResponse(updated),
	})
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	removed, err := h.ledger.Remove(r.Context(), id)
	if err != nil {
		h.writeError(w, r, describeNotFound(err, "Order %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, orderMutationResponse{
		Message: "Order deleted successfully",
		Order:   toOrderResponse(removed),
	})
}

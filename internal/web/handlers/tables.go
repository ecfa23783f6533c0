package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/saltyorg/cafedb/internal/database"
)

// ListRows handles GET /api/{table}. Query parameters become an equality
// filter in the order they appear in the URL.
func (h *Handlers) ListRows(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	filter, err := filterFromQuery(r.URL.RawQuery)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var rows []database.Row
	if len(filter) == 0 {
		rows, err = h.db.SelectAll(table)
	} else {
		rows, err = h.db.SelectWhere(table, filter)
	}
	if err != nil {
		h.dbError(w, err)
		return
	}

	columns, _ := database.Columns(table)
	h.jsonResponse(w, http.StatusOK, map[string]any{
		"table":   table,
		"columns": columns,
		"rows":    rows,
	})
}

// CountRows handles GET /api/{table}/count
func (h *Handlers) CountRows(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	count, err := h.db.Count(table)
	if err != nil {
		h.dbError(w, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]any{"table": table, "count": count})
}

// CreateRow handles POST /api/{table} for cafes and orders
func (h *Handlers) CreateRow(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	var (
		id  int64
		err error
	)
	switch table {
	case database.TableCafes:
		var cafe database.Cafe
		if err := decodeStrict(r, &cafe); err != nil {
			h.jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		id, err = h.db.InsertCafe(cafe)
	case database.TableOrders:
		var order database.Order
		if err := decodeStrict(r, &order); err != nil {
			h.jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		id, err = h.db.InsertOrder(order)
	default:
		h.jsonError(w, fmt.Sprintf("unknown table: %q", table), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.dbError(w, err)
		return
	}

	h.jsonResponse(w, http.StatusCreated, map[string]any{"id": id})
}

// decodeStrict decodes a JSON body, rejecting keys that are not columns of the target row
func decodeStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// UpdateRow handles PATCH /api/{table}/{id} with a JSON object of assignments
func (h *Handlers) UpdateRow(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.jsonError(w, "Invalid row ID", http.StatusBadRequest)
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// JSON objects are unordered; sort for a stable SET clause
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	fields := make(database.Filter, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, database.Pair{Column: k, Value: body[k]})
	}

	if err := h.db.Update(table, id, fields); err != nil {
		h.dbError(w, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]any{"success": true})
}

// DeleteRows handles DELETE /api/{table}. Without query parameters every
// row is removed; with them only the matching rows.
func (h *Handlers) DeleteRows(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	filter, err := filterFromQuery(r.URL.RawQuery)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(filter) == 0 {
		err = h.db.DeleteAll(table)
	} else {
		err = h.db.DeleteWhere(table, filter)
	}
	if err != nil {
		h.dbError(w, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]any{"success": true})
}

// filterFromQuery parses a raw query string into an ordered filter.
// url.Values is a map and would lose the order, so the string is split by hand.
func filterFromQuery(raw string) (database.Filter, error) {
	var filter database.Filter
	for part := range strings.SplitSeq(raw, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		column, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("invalid query parameter %q: %w", k, err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %q: %w", column, err)
		}
		filter = append(filter, database.Pair{Column: column, Value: value})
	}
	return filter, nil
}

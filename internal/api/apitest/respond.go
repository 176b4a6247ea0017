package apitest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func withClaims(ctx context.Context, c *claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func claimsFrom(ctx context.Context) *claims {
	if c, ok := ctx.Value(ctxKey{}).(*claims); ok {
		return c
	}
	return &claims{}
}

func idParam(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func ok200(w http.ResponseWriter, data interface{}) {
	writeJSON(w, map[string]interface{}{"code": 200, "message": "success", "data": data})
}

// fail answers with HTTP 200 and a business error code, the way the
// backend reports validation and lookup failures.
func fail(w http.ResponseWriter, code int, message string) {
	writeJSON(w, map[string]interface{}{"code": code, "message": message, "data": nil})
}

func page[T any](w http.ResponseWriter, r *http.Request, list []T) {
	num, _ := strconv.Atoi(r.URL.Query().Get("pageNum"))
	size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	pageOf(w, list, num, size)
}

func pageOf[T any](w http.ResponseWriter, list []T, num, size int) {
	if num < 1 {
		num = 1
	}
	if size < 1 {
		size = 10
	}
	total := len(list)
	start := (num - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	writeJSON(w, map[string]interface{}{
		"code":     200,
		"message":  "success",
		"data":     list[start:end],
		"total":    total,
		"pageNum":  num,
		"pageSize": size,
	})
}

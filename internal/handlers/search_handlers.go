package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"airline_ops/internal/cache"
	"airline_ops/internal/metrics"
	"airline_ops/internal/models"
)

type SearchService interface {
	Search(ctx context.Context, fromIata, toIata, date string, maxLegs int) (*models.SearchResponse, error)
	MaxLegs() int
}

type SearchHandler struct {
	service SearchService
	cache   cache.Cache
	ttl     time.Duration
}

func NewSearchHandler(service SearchService, cache cache.Cache, ttl time.Duration) *SearchHandler {
	return &SearchHandler{
		service: service,
		cache:   cache,
		ttl:     ttl,
	}
}

// GET /api/search?from=AMS&to=ICN&date=2026-09-01&max_legs=3
// 200: SearchResponse (пустой journeys — тоже 200)
// 400: invalid params
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := strings.ToUpper(strings.TrimSpace(q.Get("from")))
	to := strings.ToUpper(strings.TrimSpace(q.Get("to")))
	date := strings.TrimSpace(q.Get("date"))

	if from == "" || to == "" || date == "" {
		writeError(w, http.StatusBadRequest, "from, to and date are required")
		return
	}

	maxLegs := h.service.MaxLegs()
	if raw := strings.TrimSpace(q.Get("max_legs")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "max_legs must be a positive integer")
			return
		}
		maxLegs = n
	}

	// 1) cache lookup
	var cacheKey string
	if h.cache != nil {
		cacheKey = cache.SearchKey(from, to, date, maxLegs)
		if b, hit, err := h.cache.Get(r.Context(), cacheKey); err == nil && hit {
			metrics.IncRedisHit()
			w.Header().Set("X-Cache", "HIT")
			writeRawJSON(w, http.StatusOK, b)
			return
		}
	}

	// 2) DB via service
	resp, err := h.service.Search(r.Context(), from, to, date, maxLegs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	b, _ := json.Marshal(resp)

	// 3) cache store + ключ в set для инвалидации по событиям рейсов
	if h.cache != nil {
		_ = h.cache.Set(r.Context(), cacheKey, b, h.ttl)

		setKey := cache.SearchKeysSetKey()
		_ = h.cache.SAdd(r.Context(), setKey, cacheKey)
		_ = h.cache.Expire(r.Context(), setKey, h.ttl)
	}

	metrics.IncRedisMiss()
	w.Header().Set("X-Cache", "MISS")
	writeRawJSON(w, http.StatusOK, b)
}

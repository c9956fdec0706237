package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/importops-backend/api/responses"
	pkgerrors "github.com/angelmondragon/importops-backend/pkg/errors"
	"github.com/angelmondragon/importops-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/importops-backend/pkg/redis"
)

const (
	idempotencyKeyHeader  = "Idempotency-Key"
	replayedHeader        = "Idempotent-Replayed"
	maxIdempotencyKeyLen  = 255
	inFlightTTL           = 2 * time.Minute
	workflowRetentionTTL  = 24 * time.Hour
	moneyRetentionTTL     = 7 * 24 * time.Hour
	recordStateInFlight   = "in_flight"
	recordStateCompleted  = "completed"
	dispatchOrdersPrefix  = "/api/v1/dispatch-orders/"
	paymentsPrefix        = "/api/v1/payments/"
	ledgerEntriesEndpoint = "/api/v1/ledger/entries"
)

// idempotentRoute matches POST paths by prefix and suffix. An empty suffix
// matches the whole prefix tree; exact routes set both to the full path.
type idempotentRoute struct {
	prefix string
	suffix string
	ttl    time.Duration
}

var idempotentRoutes = []idempotentRoute{
	{prefix: dispatchOrdersPrefix, suffix: "/submit-approval", ttl: workflowRetentionTTL},
	{prefix: dispatchOrdersPrefix, suffix: "/revert", ttl: workflowRetentionTTL},
	{prefix: dispatchOrdersPrefix, suffix: "/cancel", ttl: workflowRetentionTTL},
	{prefix: ledgerEntriesEndpoint, suffix: ledgerEntriesEndpoint, ttl: workflowRetentionTTL},
	{prefix: dispatchOrdersPrefix, suffix: "/confirm", ttl: moneyRetentionTTL},
	{prefix: dispatchOrdersPrefix, suffix: "/returns", ttl: moneyRetentionTTL},
	{prefix: paymentsPrefix, ttl: moneyRetentionTTL},
}

// idempotencyRecord is the value kept under an idempotency key. While the
// first request runs it holds only the state and the request hash.
type idempotencyRecord struct {
	State       string `json:"state"`
	RequestHash string `json:"requestHash"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Idempotency makes the listed mutating routes safe to retry. The first
// request with a key reserves it, concurrent duplicates get 409, completed
// non-5xx responses are replayed verbatim and 5xx responses release the key.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, ok := routeTTL(r.Method, r.URL.Path)
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			clientKey := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
			if clientKey == "" || len(clientKey) > maxIdempotencyKeyLen {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required").
					WithDetails(map[string]any{"maxLength": maxIdempotencyKeyLen}))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			hash := hashBody(body)
			key := store.IdempotencyKey(UserIDFromContext(ctx)+"|"+r.Method+"|"+r.URL.Path, clientKey)

			marker, _ := json.Marshal(idempotencyRecord{State: recordStateInFlight, RequestHash: hash})
			reserved, err := store.SetNX(ctx, key, string(marker), inFlightTTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key"))
				return
			}
			if !reserved {
				replayExisting(w, r, store, logg, key, hash)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)
			status := capture.statusOrOK()

			if status >= http.StatusInternalServerError {
				if err := store.Del(ctx, key); err != nil && logg != nil {
					logg.Error(ctx, "release idempotency key", err)
				}
				return
			}
			record, err := json.Marshal(idempotencyRecord{
				State:       recordStateCompleted,
				RequestHash: hash,
				Status:      status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
			})
			if err == nil {
				err = store.Set(ctx, key, string(record), ttl)
			}
			if err != nil && logg != nil {
				logg.Error(ctx, "persist idempotency record", err)
			}
		})
	}
}

func replayExisting(w http.ResponseWriter, r *http.Request, store pkgredis.IdempotencyStore, logg *logger.Logger, key, hash string) {
	ctx := r.Context()
	stored, err := store.Get(ctx, key)
	switch {
	case errors.Is(err, redis.Nil):
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key expired while in use, retry the request"))
		return
	case err != nil:
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read idempotency record"))
		return
	}

	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if record.RequestHash != hash {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return
	}
	if record.State != recordStateCompleted {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "a request with this idempotency key is still in progress"))
		return
	}

	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(record.Status)
	_, _ = w.Write(record.Body)
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func routeTTL(method, path string) (time.Duration, bool) {
	if method != http.MethodPost || path == "" {
		return 0, false
	}
	for _, route := range idempotentRoutes {
		if strings.HasPrefix(path, route.prefix) && strings.HasSuffix(path, route.suffix) {
			return route.ttl, true
		}
	}
	return 0, false
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseCapture) statusOrOK() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

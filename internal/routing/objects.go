package routing

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/SystemBuilders/StripeKey/internal/lockservice"
	"github.com/SystemBuilders/StripeKey/internal/objects"
	"github.com/SystemBuilders/StripeKey/internal/storage"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// MaxWriteSize is the largest body accepted by a hinted write, the OSD's
// default osd_max_write_size.
const MaxWriteSize = 90 << 20

// storeFunc runs one operation on the store of the request's pool and fills
// resp with its result.
type storeFunc func(r *http.Request, s *objects.Store, resp *Response) error

// makeStoreHandler wraps an operation and creates a clean HTTP service.
func (h *handler) makeStoreHandler(fn storeFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(r, h.log)
		resp, err := pathObject(r)
		if err != nil {
			fail(w, log, r, resp, err)
			return
		}

		pool, err := h.provider.Pool(resp.Pool)
		if err != nil {
			fail(w, log, r, resp, err)
			return
		}
		defer pool.Close()

		if err := fn(r, objects.New(log, pool), resp); err != nil {
			fail(w, log, r, resp, err)
			return
		}
		log.
			Debug().
			Str("method", r.Method).
			Str("pool", resp.Pool).
			Str("object", resp.Object).
			Msg("done")
		writeJSON(w, log, http.StatusOK, resp)
	}
}

// pathObject returns the unescaped pool and object named by the route.
func pathObject(r *http.Request) (*Response, error) {
	vars := mux.Vars(r)
	resp := &Response{Pool: vars["pool"], Object: vars["oid"]}
	pool, err := url.PathUnescape(resp.Pool)
	if err != nil {
		return resp, fmt.Errorf("%w: %v", ErrBadPath, err)
	}
	oid, err := url.PathUnescape(resp.Object)
	if err != nil {
		return resp, fmt.Errorf("%w: %v", ErrBadPath, err)
	}
	resp.Pool, resp.Object = pool, oid
	return resp, nil
}

func remove(r *http.Request, s *objects.Store, resp *Response) error {
	return s.Remove(resp.Object)
}

func write(r *http.Request, s *objects.Store, resp *Response) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxWriteSize+1))
	if err != nil {
		return err
	}
	if len(data) > MaxWriteSize {
		return ErrBodyTooLarge
	}
	if err := s.WriteNew(resp.Object, data); err != nil {
		return err
	}
	resp.Size = uint64(len(data))
	return nil
}

func stat(r *http.Request, s *objects.Store, resp *Response) error {
	size, mtime, err := s.Stat(resp.Object)
	if err != nil {
		return err
	}
	resp.Size = size
	resp.Mtime = &mtime
	return nil
}

func lockers(r *http.Request, s *objects.Store, resp *Response) error {
	info, err := s.Lockers(resp.Object)
	if err != nil {
		return err
	}
	resp.Lock = &LockInfo{
		Chunk:     storage.FirstChunkID(resp.Object),
		Exclusive: info.Exclusive,
		Tag:       info.Tag,
		Clients:   info.Clients,
		Cookies:   info.Cookies,
		Addrs:     info.Addrs,
	}
	return nil
}

func breakLock(r *http.Request, s *objects.Store, resp *Response) error {
	return s.BreakLock(resp.Object)
}

// classify maps an operation error to its HTTP status, error kind and
// librados status.
func classify(err error) (code int, kind string, status int) {
	status = storage.StatusOf(err)
	switch {
	case errors.Is(err, storage.ErrEmptyOid), errors.Is(err, ErrBodyTooLarge), errors.Is(err, ErrBadPath):
		return http.StatusBadRequest, KindInvalid, int(storage.ErrInvalid)
	case errors.Is(err, storage.ErrPoolNotFound):
		return http.StatusNotFound, KindPoolNotFound, int(storage.ErrNotFound)
	case errors.Is(err, lockservice.ErrLockQueryFailed):
		return http.StatusBadGateway, KindLockQueryFailed, status
	case errors.Is(err, lockservice.ErrLockBreakFailed):
		return http.StatusBadGateway, KindLockBreakFailed, status
	case objects.IsRetryable(err):
		return http.StatusConflict, KindBusy, status
	case status == int(storage.ErrNotFound):
		return http.StatusNotFound, KindStorage, status
	default:
		return http.StatusInternalServerError, KindStorage, status
	}
}

func fail(w http.ResponseWriter, log zerolog.Logger, r *http.Request, resp *Response, err error) {
	code, kind, status := classify(err)
	resp.Kind = kind
	resp.Status = status
	resp.Error = err.Error()
	log.
		Warn().
		Str("method", r.Method).
		Str("pool", resp.Pool).
		Str("object", resp.Object).
		Int("status", status).
		Err(err).
		Msg("request failed")
	writeJSON(w, log, code, resp)
}

func writeJSON(w http.ResponseWriter, log zerolog.Logger, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.
			Warn().
			Int("code", code).
			Err(err).
			Msg("can't write response")
	}
}

// Package client talks to services the layout service depends on but does
// not own.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-seat-layout/internal/layout"
)

// AllocationClient reads team allocations from the allocation backend.
// Reads are idempotent, so transient failures and 5xx answers are retried.
type AllocationClient struct {
	http   *resty.Client
	logger *zap.Logger
}

type allocationsResponse struct {
	Allocations []layout.Allocation `json:"allocations"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewAllocationClient creates a client for the backend at baseURL.  A
// non-empty token is sent as a bearer token on every request.
func NewAllocationClient(baseURL, token string, timeout time.Duration, retries int, logger *zap.Logger) *AllocationClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Accept", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &AllocationClient{http: c, logger: logger}
}

// ListByRoom returns the allocations of a room.  A room the backend does not
// know has no allocations.
func (c *AllocationClient) ListByRoom(ctx context.Context, roomID uint64) ([]layout.Allocation, error) {
	var (
		out     allocationsResponse
		failure errorResponse
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("room_id", strconv.FormatUint(roomID, 10)).
		SetResult(&out).
		SetError(&failure).
		Get("/v1/rooms/{room_id}/allocations")
	if err != nil {
		c.logger.Error("allocation backend unreachable", zap.Uint64("room_id", roomID), zap.Error(err))
		return nil, fmt.Errorf("fetch allocations: %w", err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, nil
	case resp.IsError():
		c.logger.Error("allocation backend returned error",
			zap.Uint64("room_id", roomID),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("msg", failure.Error),
		)
		return nil, fmt.Errorf("fetch allocations: status %d: %s", resp.StatusCode(), failure.Error)
	}
	c.logger.Debug("allocations fetched", zap.Uint64("room_id", roomID), zap.Int("teams", len(out.Allocations)))
	return out.Allocations, nil
}

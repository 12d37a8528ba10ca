// Package dedupe makes analysis submission idempotent per caller-supplied
// request id: a repeated submission with the same id and body replays the
// original response instead of re-entering admission.
package dedupe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/cespare/xxhash/v2"

	"encore.dev/beta/errs"
	"encore.dev/middleware"
	"encore.dev/rlog"
	"encore.dev/storage/cache"

	"encore.app/analysis/model"
)

// RequestIDHeader carries the caller-supplied request identifier.
var RequestIDHeader = "X-Request-ID"

//encore:middleware target=tag:dedupe
func DedupeMiddleware(req middleware.Request, next middleware.Next) middleware.Response {
	requestID := extractRequestID(req)
	if requestID == "" {
		// No caller-supplied id: the endpoint generates one, nothing to dedupe.
		return next(req)
	}

	bodyHash := generateBodyHash(req)

	cacheKey := model.DedupeKey{
		Resource: req.Data().Path,
		Key:      requestID,
	}

	entry, cacheErr := SubmissionCache.Get(req.Context(), cacheKey)
	if cacheErr != nil {
		// Cache miss: process as a new submission.
		if errors.Is(cacheErr, cache.Miss) {
			if err := markAsProcessing(req.Context(), cacheKey); err != nil {
				return middleware.Response{Err: err}
			}

			response := next(req)

			if response.Err != nil {
				deleteCacheEntry(req.Context(), cacheKey)
			} else {
				markAsCompleted(req.Context(), cacheKey, bodyHash, requestID, response)
			}

			return response
		}

		return middleware.Response{
			Err: &errs.Error{Code: errs.Internal, Message: "failed to check submission dedupe state"},
		}
	}

	return handleExistingEntry(req, next, entry, bodyHash, requestID)
}

// extractRequestID pulls the optional request id from headers.
func extractRequestID(req middleware.Request) string {
	if headers := req.Data().Headers; headers != nil {
		return headers.Get(RequestIDHeader)
	}
	return ""
}

// generateBodyHash fingerprints the request body for conflict detection.
func generateBodyHash(req middleware.Request) string {
	var bodyHash string
	if payload := req.Data().Payload; payload != nil {
		if bodyBytes, err := json.Marshal(payload); err != nil {
			rlog.Error("failed to marshal request body for dedupe", "error", err)
		} else {
			bodyHash = hashBody(bodyBytes)
		}
	}
	return bodyHash
}

// handleExistingEntry resolves a submission whose id was seen before.
func handleExistingEntry(req middleware.Request, next middleware.Next, entry model.DedupeEntry, bodyHash, requestID string) middleware.Response {
	if err := validateBodyHash(entry, bodyHash); err != nil {
		return middleware.Response{Err: err}
	}

	switch entry.Status {
	case "processing":
		rlog.Info("concurrent submission detected", "request_id", requestID)
		return middleware.Response{
			Err: &errs.Error{Code: errs.Aborted, Message: "submission is already being processed"},
		}
	case "completed":
		return handleCompletedEntry(req, next, entry, requestID)
	default:
		rlog.Warn("unknown dedupe entry status, processing as new submission", "request_id", requestID, "status", entry.Status)
		return next(req)
	}
}

// validateBodyHash rejects id reuse with a different body.
func validateBodyHash(entry model.DedupeEntry, bodyHash string) *errs.Error {
	if bodyHash != "" && entry.RequestBodyHash != "" && bodyHash != entry.RequestBodyHash {
		return &errs.Error{Code: errs.InvalidArgument, Message: "request id conflict: body does not match previous submission"}
	}
	return nil
}

// handleCompletedEntry replays the cached response for a finished submission.
func handleCompletedEntry(req middleware.Request, next middleware.Next, entry model.DedupeEntry, requestID string) middleware.Response {
	if len(entry.Response) > 0 {
		rlog.Info("replaying cached submission response", "request_id", requestID)

		responseType := req.Data().API.ResponseType
		if responseType != nil {
			responseValue := reflect.New(responseType.Elem()).Interface()
			if err := json.Unmarshal(entry.Response, responseValue); err == nil {
				return middleware.Response{Payload: responseValue}
			}
			rlog.Error("failed to unmarshal cached submission response", "request_id", requestID)
		}
	}

	// Cached response unreadable: treat as a new submission.
	return next(req)
}

// markAsProcessing claims the request id before admission runs.
func markAsProcessing(ctx context.Context, cacheKey model.DedupeKey) *errs.Error {
	if err := SubmissionCache.Set(ctx, cacheKey, model.DedupeEntry{
		Status:    "processing",
		CreatedAt: time.Now(),
	}); err != nil {
		rlog.Error("failed to mark submission as processing", "error", err)
		return &errs.Error{Code: errs.Internal, Message: "failed to mark submission as processing"}
	}
	return nil
}

// deleteCacheEntry clears a failed submission so the id can be retried.
func deleteCacheEntry(ctx context.Context, cacheKey model.DedupeKey) {
	if _, err := SubmissionCache.Delete(ctx, cacheKey); err != nil {
		rlog.Error("failed to clear failed submission from dedupe cache", "error", err)
	}
}

// markAsCompleted caches the successful response for replay.
func markAsCompleted(ctx context.Context, cacheKey model.DedupeKey, bodyHash, requestID string, response middleware.Response) {
	completedEntry := model.DedupeEntry{
		Status:          "completed",
		RequestBodyHash: bodyHash,
		UpdatedAt:       time.Now(),
	}

	if response.Payload != nil {
		payloadBytes, err := json.Marshal(response.Payload)
		if err != nil {
			rlog.Error("failed to marshal response payload for dedupe cache", "error", err)
			return
		}
		completedEntry.Response = payloadBytes
	}

	if err := SubmissionCache.Set(ctx, cacheKey, completedEntry); err != nil {
		rlog.Error("failed to cache submission response", "error", err)
	}

	rlog.Debug("submission completed and response cached", "request_id", requestID)
}

// hashBody produces a stable hash of the JSON request body.
func hashBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(body))
}

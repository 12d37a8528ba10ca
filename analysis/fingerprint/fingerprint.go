// Package fingerprint derives deterministic content keys for work units so
// equivalent analysis tasks share one cache entry.
package fingerprint

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	"encore.app/analysis/model"
)

// Compute hashes the normalized task payload, parameters, backend selector
// and template into a stable hex key. Parameter order does not affect the
// result; every field is length-prefixed so adjacent values cannot collide.
func Compute(task string, params map[string]string, backend model.BackendKind, templateID string) string {
	h := xxhash.New()

	writeField(h, string(backend))
	writeField(h, templateID)
	writeField(h, task)

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeField(h, k)
		writeField(h, params[k])
	}

	return fmt.Sprintf("%016x", h.Sum64())
}

// ForWorkUnit returns the fingerprint for the request a work unit was built from.
func ForWorkUnit(req *model.AnalysisRequest) string {
	return Compute(req.Task, req.Params, req.Backend, req.TemplateID)
}

func writeField(h *xxhash.Digest, s string) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(s)))
	_, _ = h.Write(n[:])
	_, _ = h.WriteString(s)
}

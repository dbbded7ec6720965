// Package respond is the single structured-response emission path for the
// service. It enforces the invariant that every structured response body
// is a keyed record at the top level, never a bare scalar or a sequence.
//
// A violation is a programming error, not a runtime condition: the
// malformed body is never transmitted. The attempt is logged at error
// severity and the client receives a generic 500 envelope. This guards a
// previously-fixed defect class and must stay loud.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"reflect"
)

// ErrorBody is the envelope for structured error responses.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes body as a JSON response with the given status code. The
// body is marshaled first and the encoded form inspected, so types with
// custom marshalers that emit a bare scalar or sequence (time.Time,
// json.RawMessage holding an array) are caught the same as plain ones.
// On a violation or a marshal failure the response is aborted: the
// problem is logged and a 500 envelope is written instead.
func JSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		slog.Error("failed to encode response body",
			"body_type", typeName(body), "error", err)
		writeInternalError(w)
		return
	}
	if !isKeyedRecord(data) {
		slog.Error("response contract violation: top-level body is not a keyed record",
			"body_type", typeName(body),
		)
		writeInternalError(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		// Headers are already out; nothing to do but log.
		slog.Error("failed to write response body", "error", err)
	}
}

// Error writes a structured error response. The message is operator-safe
// text; raw errors and stack traces never reach a client.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

func writeInternalError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(ErrorBody{Error: "internal error"})
}

// isKeyedRecord reports whether the encoded body is a JSON object at the
// top level. json.RawMessage may carry leading whitespace, so scan past
// it before judging the first byte.
func isKeyedRecord(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return b == '{'
		}
	}
	return false
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

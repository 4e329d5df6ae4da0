// Package netbash serves the NetBash console endpoints: the bundled
// script and style assets and the JSON command endpoint.
package netbash

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klazomenai/netbash/pkg/assets"
	"github.com/klazomenai/netbash/pkg/command"
	"github.com/klazomenai/netbash/pkg/metrics"
)

const (
	// CommandParam is the request parameter holding the command line
	CommandParam = "Command"

	assetPrefix = "netbash-"

	// how long clients may cache bundled assets
	assetMaxAge = 7 * 24 * time.Hour
)

// CommandResponse is the JSON body returned by the command endpoint
type CommandResponse struct {
	Success bool   `json:"Success"`
	IsRaw   bool   `json:"IsRaw"`
	Content string `json:"Content"`
}

// Handler dispatches every NetBash route. A single Handler is shared by all
// of them and holds no per-request state.
type Handler struct {
	assets    *assets.Cache
	processor command.Processor
	now       func() time.Time
}

// NewHandler creates a handler serving assets from cache and running
// commands through processor
func NewHandler(cache *assets.Cache, processor command.Processor) *Handler {
	return &Handler{
		assets:    cache,
		processor: processor,
		now:       time.Now,
	}
}

// ServeRoute lets a routes.Table dispatch to the handler
func (h *Handler) ServeRoute(w http.ResponseWriter, r *http.Request) error {
	return h.ProcessRequest(w, r)
}

// ProcessRequest picks a behavior from the last path segment and writes its
// output as the whole response body. Only asset bundle failures are returned.
func (h *Handler) ProcessRequest(w http.ResponseWriter, r *http.Request) error {
	p := r.URL.Path
	file := path.Base(p)
	name := strings.ToLower(strings.TrimSuffix(file, path.Ext(file)))

	var output string
	switch name {
	case "netbash-jquery", "netbash-includes":
		var err error
		output, err = h.includes(w, file)
		if err != nil {
			return err
		}
	case "netbash":
		output = h.renderCommand(w, r)
	default:
		output = NotFound(w, "", "")
	}

	// the client has gone away; headers are already out
	if _, err := io.WriteString(w, output); err != nil {
		log.Printf("Failed to write response for %s: %v", r.URL.Path, err)
	}
	return nil
}

// includes serves a bundled script or stylesheet.
func (h *Handler) includes(w http.ResponseWriter, file string) (string, error) {
	contentType, ok := assets.ContentType(file)
	if !ok {
		return NotFound(w, "", ""), nil
	}

	content, err := h.assets.GetResource(resourceName(file))
	if err != nil {
		return "", err
	}

	header := w.Header()
	header.Set("Content-Type", contentType)
	header.Set("Cache-Control", "public, max-age="+maxAgeSeconds())
	header.Set("Expires", h.now().Add(assetMaxAge).UTC().Format(http.TimeFormat))

	metrics.ObserveRequest(metrics.OutcomeAsset)
	return content, nil
}

// renderCommand runs the Command parameter once and reports the outcome
// in-band; the status code is always 200.
func (h *Handler) renderCommand(w http.ResponseWriter, r *http.Request) string {
	requestID := uuid.NewString()
	input := r.FormValue(CommandParam)

	start := time.Now()
	result := h.processor.Process(r.Context(), input)
	elapsed := time.Since(start)

	metrics.ObserveRequest(metrics.OutcomeCommand)
	metrics.ObserveCommand(result.Success, elapsed.Seconds())
	log.Printf("Command processed: request_id=%s, success=%t, duration=%s", requestID, result.Success, elapsed)

	w.Header().Set("Content-Type", "application/json")
	return encodeResponse(CommandResponse{
		Success: result.Success,
		IsRaw:   true,
		Content: result.Content,
	})
}

// NotFound sets a 404 status and the given content type (text/plain when
// empty) and returns message for use as the body.
func NotFound(w http.ResponseWriter, contentType, message string) string {
	if contentType == "" {
		contentType = "text/plain"
	}
	metrics.ObserveRequest(metrics.OutcomeNotFound)

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusNotFound)
	return message
}

// resourceName maps a request file name such as netbash-includes.css to
// the bundled asset name includes.css.
func resourceName(file string) string {
	return strings.TrimPrefix(strings.ToLower(file), assetPrefix)
}

func maxAgeSeconds() string {
	return strconv.Itoa(int(assetMaxAge.Seconds()))
}

// encodeFailure is sent if a response cannot be encoded. CommandResponse
// holds only a bool and strings, so Encode does not fail in practice.
const encodeFailure = `{"Success":false,"IsRaw":true,"Content":"failed to encode response"}`

// encodeResponse marshals without HTML escaping so Content reaches the
// console unchanged.
func encodeResponse(resp CommandResponse) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp); err != nil {
		log.Printf("Failed to encode command response: %v", err)
		return encodeFailure
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

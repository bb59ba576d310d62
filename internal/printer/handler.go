// internal/printer/handler.go
package printer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"printer-server/internal/model"
)

// ErrNotInitialized is returned when a handler is used before Initialize succeeded
var ErrNotInitialized = errors.New("handler not initialized")

var errMissingDocument = errors.New("missing document parameter")

const (
	msgNotInitialized  = "Handler not initialized"
	msgMissingDocument = "Missing document parameter"
)

// Handler translates documents into one printer protocol and owns the
// device connection behind it.
type Handler interface {
	Type() model.HandlerType
	Initialize(ctx context.Context, settings Settings) bool
	ProcessDocument(ctx context.Context, doc *model.Document) model.Response
	ProcessRequest(ctx context.Context, method string, params map[string]interface{}) model.Response
	PrintReportX(ctx context.Context) model.Response
	PrintReportZ(ctx context.Context) model.Response
	CheckStatus(ctx context.Context) model.Response
	Shutdown() error
}

// baseHandler carries the state and request dispatch shared by every variant.
// self points back at the embedding handler so dispatch reaches its overrides.
type baseHandler struct {
	kind   model.HandlerType
	logger *zap.Logger
	ready  atomic.Bool
	self   Handler
}

func (b *baseHandler) bind(self Handler, kind model.HandlerType, logger *zap.Logger) {
	b.self = self
	b.kind = kind
	b.logger = logger.With(zap.String("handler", string(kind)))
}

func (b *baseHandler) Type() model.HandlerType {
	return b.kind
}

func (b *baseHandler) initialized() bool {
	return b.ready.Load()
}

// ProcessRequest routes a named method to the matching operation
func (b *baseHandler) ProcessRequest(ctx context.Context, method string, params map[string]interface{}) model.Response {
	if !b.initialized() {
		return model.Failure(msgNotInitialized)
	}

	switch strings.ToUpper(strings.TrimSpace(method)) {
	case "X":
		return b.self.PrintReportX(ctx)
	case "Z":
		return b.self.PrintReportZ(ctx)
	case "DOCUMENT":
		doc, err := documentParam(params)
		if errors.Is(err, errMissingDocument) {
			return model.Failure(msgMissingDocument)
		}
		if err != nil {
			return model.Failure(fmt.Sprintf("Invalid document parameter: %v", err))
		}
		return b.self.ProcessDocument(ctx, doc)
	default:
		return model.Failure(fmt.Sprintf("Unknown method: %s", method))
	}
}

// PrintReportX is not available on non-fiscal printers
func (b *baseHandler) PrintReportX(ctx context.Context) model.Response {
	if !b.initialized() {
		return model.Failure(msgNotInitialized)
	}
	return model.Failure("X report not implemented")
}

// PrintReportZ is not available on non-fiscal printers
func (b *baseHandler) PrintReportZ(ctx context.Context) model.Response {
	if !b.initialized() {
		return model.Failure(msgNotInitialized)
	}
	return model.Failure("Z report not implemented")
}

// documentParam accepts a decoded document, raw JSON or a generic map
func documentParam(params map[string]interface{}) (*model.Document, error) {
	raw, ok := params["document"]
	if !ok || raw == nil {
		return nil, errMissingDocument
	}

	var data []byte
	switch v := raw.(type) {
	case *model.Document:
		return v, nil
	case model.Document:
		return &v, nil
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		data = encoded
	}

	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// invalidDocument turns a validation failure into an envelope
func invalidDocument(err error) model.Response {
	response := model.Failure(err.Error())

	var validation *model.ValidationError
	if errors.As(err, &validation) {
		response.Data = map[string]interface{}{
			"validation_errors": validation.Fields,
		}
	}
	return response
}

// merge copies maps left to right into a new map
func merge(maps ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

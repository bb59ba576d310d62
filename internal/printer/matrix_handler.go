// internal/printer/matrix_handler.go
package printer

import (
	"context"

	"go.uber.org/zap"

	"printer-server/internal/matrix"
	"printer-server/internal/model"
	"printer-server/internal/template"
)

const defaultMatrixTemplate = "templates/matrix_template.txt"

type matrixSettings struct {
	PrinterName string `mapstructure:"printer_name"`
	Template    string `mapstructure:"template"`
	Columns     int    `mapstructure:"columns"`
}

// MatrixHandler prints text directive templates on ESC/P dot-matrix printers
type MatrixHandler struct {
	rawHandler
	options template.Options
}

func NewMatrixHandler(spooler Spooler, finder PrinterFinder, options template.Options, logger *zap.Logger) *MatrixHandler {
	h := &MatrixHandler{options: options}
	h.spooler = spooler
	h.finder = finder
	h.bind(h, model.HandlerMatrix, logger)
	return h
}

func (h *MatrixHandler) Initialize(ctx context.Context, settings Settings) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.initialized() {
		return true
	}

	var s matrixSettings
	if err := settings.decode(&s); err != nil {
		h.logger.Error("Failed to read matrix settings", zap.Error(err))
		return false
	}
	if s.Template == "" {
		s.Template = defaultMatrixTemplate
	}

	tmpl, err := template.LoadText(s.Template)
	if err != nil {
		h.logger.Error("Failed to load matrix template", zap.String("template", s.Template), zap.Error(err))
		return false
	}

	encoder := matrix.NewEncoder(s.Columns)
	engine := template.NewEngine(encoder, h.options)

	// Open modes are closed by the renderer; the page is ejected last
	h.render = func(doc *model.Document) ([]byte, error) {
		buffers, err := engine.RenderText(tmpl, doc, template.ItemsTable)
		if err != nil {
			return nil, err
		}
		return template.Concat(append(buffers, encoder.FormFeed())), nil
	}

	return h.attach(ctx, s.PrinterName)
}

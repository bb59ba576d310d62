// internal/printer/ticket_handler.go
package printer

import (
	"context"
	"os"

	"go.uber.org/zap"

	"printer-server/internal/escpos"
	"printer-server/internal/model"
	"printer-server/internal/template"
)

const defaultTicketTemplate = "templates/ticket_template.json"

type ticketSettings struct {
	PrinterName string `mapstructure:"printer_name"`
	Template    string `mapstructure:"template"`
	Columns     int    `mapstructure:"columns"`
}

// TicketHandler prints on ESC/POS receipt printers. The template is a JSON
// section template, or a text directive template when it does not parse.
type TicketHandler struct {
	rawHandler
	options template.Options
}

func NewTicketHandler(spooler Spooler, finder PrinterFinder, options template.Options, logger *zap.Logger) *TicketHandler {
	h := &TicketHandler{options: options}
	h.spooler = spooler
	h.finder = finder
	h.bind(h, model.HandlerTicket, logger)
	return h
}

func (h *TicketHandler) Initialize(ctx context.Context, settings Settings) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.initialized() {
		return true
	}

	var s ticketSettings
	if err := settings.decode(&s); err != nil {
		h.logger.Error("Failed to read ticket settings", zap.Error(err))
		return false
	}
	if s.Template == "" {
		s.Template = defaultTicketTemplate
	}

	source, err := os.ReadFile(s.Template)
	if err != nil {
		h.logger.Error("Failed to load ticket template", zap.String("template", s.Template), zap.Error(err))
		return false
	}

	encoder := escpos.NewEncoder(s.Columns)
	engine := template.NewEngine(encoder, h.options)

	if sections, err := template.Parse(source); err == nil {
		h.render = func(doc *model.Document) ([]byte, error) {
			buffers, err := engine.Render(sections, doc)
			if err != nil {
				return nil, err
			}
			return template.Concat(buffers), nil
		}
	} else {
		h.logger.Info("Ticket template is not JSON, using text directives",
			zap.String("template", s.Template),
			zap.NamedError("parse_error", err),
		)
		text := &template.TextTemplate{Source: string(source)}
		h.render = func(doc *model.Document) ([]byte, error) {
			buffers, err := engine.RenderText(text, doc, template.ItemsTwoLine)
			if err != nil {
				return nil, err
			}
			return template.Concat(append(buffers, encoder.Feed(3), encoder.Cut())), nil
		}
	}

	return h.attach(ctx, s.PrinterName)
}

// internal/model/printer.go
package model

import "fmt"

// HandlerType identifies a printer handler variant
type HandlerType string

const (
	HandlerFiscalTFHKA HandlerType = "FISCAL_TFHKA"
	HandlerFiscalPNP   HandlerType = "FISCAL_PNP"
	HandlerMatrix      HandlerType = "MATRIZ"
	HandlerTicket      HandlerType = "TICKET"
	HandlerProxy       HandlerType = "PROXY"
	HandlerTest        HandlerType = "TEST"
)

// HandlerTypes lists every supported variant in a stable order
var HandlerTypes = []HandlerType{
	HandlerFiscalTFHKA,
	HandlerFiscalPNP,
	HandlerMatrix,
	HandlerTicket,
	HandlerProxy,
	HandlerTest,
}

// ParseHandlerType validates a configured handler name
func ParseHandlerType(s string) (HandlerType, error) {
	for _, t := range HandlerTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown handler type: %s", s)
}

// ConnectionType represents how a printer queue is reached
type ConnectionType string

const (
	ConnectionTypeSerial ConnectionType = "SERIAL"
	ConnectionTypeUSB    ConnectionType = "USB"
	ConnectionTypeTCP    ConnectionType = "TCP"
	ConnectionTypeFile   ConnectionType = "FILE"
)

// PrinterStatus is the decoded state polled from a fiscal device
type PrinterStatus struct {
	StatusCode        int    `json:"status_code"`
	StatusDescription string `json:"status_description"`
	ErrorCode         int    `json:"error_code"`
	ErrorDescription  string `json:"error_description"`
	ErrorValidity     bool   `json:"error_validity"`
}

// ToMap flattens the status for inclusion in an envelope
func (s PrinterStatus) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"status_code":        s.StatusCode,
		"status_description": s.StatusDescription,
		"error_code":         s.ErrorCode,
		"error_description":  s.ErrorDescription,
		"error_validity":     s.ErrorValidity,
	}
}

// internal/fiscal/annex.go
package fiscal

import "printer-server/internal/model"

// Status codes
const (
	StatusUnknown           = 0
	StatusTestStandby       = 1
	StatusTestFiscal        = 2
	StatusTestNonFiscal     = 3
	StatusFiscalStandby     = 4
	StatusFiscalFiscal      = 5
	StatusFiscalNonFiscal   = 6
	StatusNearFullStandby   = 7
	StatusNearFullFiscal    = 8
	StatusNearFullNonFiscal = 9
	StatusFullStandby       = 10
	StatusFullFiscal        = 11
	StatusFullNonFiscal     = 12
)

// Error codes
const (
	ErrorNone             = 0
	ErrorPaperEnd         = 1
	ErrorPaperMechanical  = 2
	ErrorPaperBoth        = 3
	ErrorInvalidValue     = 80
	ErrorInvalidRate      = 84
	ErrorNoDirectives     = 88
	ErrorInvalidCommand   = 92
	ErrorFiscal           = 96
	ErrorFiscalMemory     = 100
	ErrorFiscalMemoryFull = 108
	ErrorBufferFull       = 112
	ErrorCommunication    = 128
	ErrorNoResponse       = 137
	ErrorLRC              = 144
	ErrorInternalAPI      = 145
	ErrorFileOpen         = 153
)

var statusDescriptions = map[int]string{
	StatusUnknown:           "Unknown status",
	StatusTestStandby:       "Test mode and standby",
	StatusTestFiscal:        "Test mode and issuing fiscal documents",
	StatusTestNonFiscal:     "Test mode and issuing non-fiscal documents",
	StatusFiscalStandby:     "Fiscal mode and standby",
	StatusFiscalFiscal:      "Fiscal mode and issuing fiscal documents",
	StatusFiscalNonFiscal:   "Fiscal mode and issuing non-fiscal documents",
	StatusNearFullStandby:   "Fiscal mode, fiscal memory nearly full and standby",
	StatusNearFullFiscal:    "Fiscal mode, fiscal memory nearly full and issuing fiscal documents",
	StatusNearFullNonFiscal: "Fiscal mode, fiscal memory nearly full and issuing non-fiscal documents",
	StatusFullStandby:       "Fiscal mode, fiscal memory full and standby",
	StatusFullFiscal:        "Fiscal mode, fiscal memory full and issuing fiscal documents",
	StatusFullNonFiscal:     "Fiscal mode, fiscal memory full and issuing non-fiscal documents",
}

var errorDescriptions = map[int]string{
	ErrorNone:             "No error",
	ErrorPaperEnd:         "Paper end",
	ErrorPaperMechanical:  "Mechanical error in paper feed",
	ErrorPaperBoth:        "Paper end and mechanical error",
	ErrorInvalidValue:     "Invalid command or value",
	ErrorInvalidRate:      "Invalid tax rate",
	ErrorNoDirectives:     "No directives assigned",
	ErrorInvalidCommand:   "Invalid command",
	ErrorFiscal:           "Fiscal error",
	ErrorFiscalMemory:     "Fiscal memory error",
	ErrorFiscalMemoryFull: "Fiscal memory full",
	ErrorBufferFull:       "Buffer full",
	ErrorCommunication:    "Communication error",
	ErrorNoResponse:       "No response",
	ErrorLRC:              "LRC error",
	ErrorInternalAPI:      "Internal API error",
	ErrorFileOpen:         "Error opening file",
}

// DescribeStatus never fails; unknown codes get a generic description
func DescribeStatus(code int) string {
	if d, ok := statusDescriptions[code]; ok {
		return d
	}
	return "Status not registered"
}

// DescribeError never fails; unknown codes get a generic description
func DescribeError(code int) string {
	if d, ok := errorDescriptions[code]; ok {
		return d
	}
	return "Error not registered"
}

// NewStatus decodes a status/error code pair
func NewStatus(statusCode, errorCode int) model.PrinterStatus {
	_, known := errorDescriptions[errorCode]
	return model.PrinterStatus{
		StatusCode:        statusCode,
		StatusDescription: DescribeStatus(statusCode),
		ErrorCode:         errorCode,
		ErrorDescription:  DescribeError(errorCode),
		ErrorValidity:     known,
	}
}

// STS1 byte to status code
var tfhkaStatusBytes = map[byte]int{
	0x40: StatusTestStandby,
	0x41: StatusTestFiscal,
	0x42: StatusTestNonFiscal,
	0x60: StatusFiscalStandby,
	0x61: StatusFiscalFiscal,
	0x62: StatusFiscalNonFiscal,
	0x70: StatusNearFullStandby,
	0x71: StatusNearFullFiscal,
	0x72: StatusNearFullNonFiscal,
	0x68: StatusFullStandby,
	0x69: StatusFullFiscal,
	0x6A: StatusFullNonFiscal,
}

// decodeTFHKA maps the ENQ reply bytes. STS2 values past the paper
// range already equal their error code.
func decodeTFHKA(sts1, sts2 byte) model.PrinterStatus {
	status := tfhkaStatusBytes[sts1]

	errCode := int(sts2)
	switch sts2 {
	case 0x40:
		errCode = ErrorNone
	case 0x41, 0x42, 0x43:
		errCode = int(sts2 - 0x40)
	}

	return NewStatus(status, errCode)
}

package printer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"printer-server/internal/fiscal"
	"printer-server/internal/fiscal/mocks"
	"printer-server/internal/model"
)

var (
	standby   = model.PrinterStatus{StatusCode: fiscal.StatusFiscalStandby, StatusDescription: "Fiscal mode, standby"}
	paperOut  = model.PrinterStatus{StatusCode: fiscal.StatusFiscalStandby, ErrorCode: fiscal.ErrorPaperEnd, ErrorDescription: "Paper end"}
	stillOpen = model.PrinterStatus{StatusCode: fiscal.StatusFiscalFiscal}
)

// newFiscal returns an initialized TFHKA handler on a mock device
func newFiscal(t *testing.T) (*FiscalHandler, *mocks.MockDevice) {
	t.Helper()

	ctrl := gomock.NewController(t)
	device := mocks.NewMockDevice(ctrl)

	gomock.InOrder(
		device.EXPECT().OpenPort("COM7").Return(true),
		device.EXPECT().CheckPrinter().Return(true),
	)

	h := NewFiscalHandler(model.HandlerFiscalTFHKA, zap.NewNop()).WithDevice(device)
	if !h.Initialize(context.Background(), Settings{"port": "COM7", "baud_rate": "9600"}) {
		t.Fatalf("expected initialization to succeed")
	}
	return h, device
}

func TestFiscalHandler_ProcessDocumentOrder(t *testing.T) {
	h, device := newFiscal(t)
	doc := sampleDocument()

	gomock.InOrder(
		device.EXPECT().CheckPrinter().Return(true),
		device.EXPECT().ReadStatus().Return(standby, nil),
		device.EXPECT().SendCommand("iR*V-12345678").Return(true),
		device.EXPECT().SendCommand("iS*Jane Doe").Return(true),
		device.EXPECT().SendCommand("i04REF:F-0001").Return(true),
		device.EXPECT().SendCommand("!000000125000002000Widget").Return(true),
		device.EXPECT().SendCommand(" 000000030000001000Nut").Return(true),
		device.EXPECT().SendCommand("201000000002000").Return(true),
		device.EXPECT().SendCommand("102").Return(true),
		device.EXPECT().ReadStatus().Return(standby, nil),
		device.EXPECT().UploadS1().Return(fiscal.S1Data{LastInvoiceNumber: "00000042", RegisteredSerial: "Z1B0000001"}, nil),
	)

	resp := h.ProcessDocument(context.Background(), doc)
	if !resp.Success {
		t.Fatalf("expected success, got %q", resp.Message)
	}
	if resp.Message != "Invoice closed successfully" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if resp.Data["last_invoice_number"] != "00000042" {
		t.Fatalf("expected S1 counters in data, got %v", resp.Data)
	}
	if resp.Data["port"] != "COM7" || resp.Data["printer_model"] != "FISCAL_TFHKA" {
		t.Fatalf("expected printer info in data, got %v", resp.Data)
	}
}

func TestFiscalHandler_AbortsOnFailedItem(t *testing.T) {
	h, device := newFiscal(t)

	gomock.InOrder(
		device.EXPECT().CheckPrinter().Return(true),
		device.EXPECT().ReadStatus().Return(standby, nil),
		device.EXPECT().SendCommand("iR*V-12345678").Return(true),
		device.EXPECT().SendCommand("iS*Jane Doe").Return(true),
		device.EXPECT().SendCommand("i04REF:F-0001").Return(true),
		device.EXPECT().SendCommand("!000000125000002000Widget").Return(true),
		device.EXPECT().SendCommand(" 000000030000001000Nut").Return(false),
	)

	resp := h.ProcessDocument(context.Background(), sampleDocument())
	if resp.Success {
		t.Fatalf("expected failure")
	}
	if resp.Message != "Failed to add item 2" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

func TestFiscalHandler_OpenInvoiceFailureReportsErrorCode(t *testing.T) {
	h, device := newFiscal(t)

	gomock.InOrder(
		device.EXPECT().CheckPrinter().Return(true),
		device.EXPECT().ReadStatus().Return(standby, nil),
		device.EXPECT().SendCommand("iR*V-12345678").Return(false),
		device.EXPECT().ReadStatus().Return(model.PrinterStatus{ErrorCode: fiscal.ErrorInvalidCommand}, nil),
	)

	resp := h.ProcessDocument(context.Background(), sampleDocument())
	if resp.Message != "Failed to open invoice. Error code: 92" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

func TestFiscalHandler_NotReady(t *testing.T) {
	h, device := newFiscal(t)

	gomock.InOrder(
		device.EXPECT().CheckPrinter().Return(true),
		device.EXPECT().ReadStatus().Return(paperOut, nil),
	)

	resp := h.ProcessDocument(context.Background(), sampleDocument())
	if resp.Success {
		t.Fatalf("expected failure")
	}
	if !strings.HasPrefix(resp.Message, "Printer not ready") {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if resp.Data["error_code"] != fiscal.ErrorPaperEnd {
		t.Fatalf("expected status in data, got %v", resp.Data)
	}
}

func TestFiscalHandler_DocumentLeftOpen(t *testing.T) {
	h, device := newFiscal(t)
	doc := sampleDocument()
	doc.Payments = doc.Payments[:1]
	doc.DocumentNumber = ""

	gomock.InOrder(
		device.EXPECT().CheckPrinter().Return(true),
		device.EXPECT().ReadStatus().Return(standby, nil),
		device.EXPECT().SendCommand(gomock.Any()).Return(true).Times(5),
		device.EXPECT().ReadStatus().Return(stillOpen, nil),
	)

	resp := h.ProcessDocument(context.Background(), doc)
	if resp.Message != "Failed to close invoice" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

func TestFiscalHandler_ValidationBeforeDevice(t *testing.T) {
	h, _ := newFiscal(t)

	doc := sampleDocument()
	doc.CustomerVAT = ""
	doc.Items = nil

	resp := h.ProcessDocument(context.Background(), doc)
	if resp.Success {
		t.Fatalf("expected failure")
	}
	fields, ok := resp.Data["validation_errors"].([]string)
	if !ok || len(fields) != 2 {
		t.Fatalf("expected two validation errors, got %v", resp.Data)
	}
}

func TestFiscalHandler_Reports(t *testing.T) {
	h, device := newFiscal(t)

	gomock.InOrder(
		device.EXPECT().SendCommand("I0X").Return(true),
		device.EXPECT().SendCommand("I0Z").Return(false),
	)

	if resp := h.PrintReportX(context.Background()); !resp.Success || resp.Message != "X report printed successfully" {
		t.Fatalf("unexpected X report response %+v", resp)
	}
	if resp := h.PrintReportZ(context.Background()); resp.Success || resp.Message != "Failed to print Z report" {
		t.Fatalf("unexpected Z report response %+v", resp)
	}
}

func TestFiscalHandler_CheckStatus(t *testing.T) {
	h, device := newFiscal(t)

	gomock.InOrder(
		device.EXPECT().ReadStatus().Return(standby, nil),
		device.EXPECT().UploadS1().Return(fiscal.S1Data{DailyClosureCounter: "0012"}, nil),
	)

	resp := h.CheckStatus(context.Background())
	if !resp.Success || resp.Message != standby.StatusDescription {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Data["daily_closure_counter"] != "0012" || resp.Data["status_code"] != fiscal.StatusFiscalStandby {
		t.Fatalf("unexpected data %v", resp.Data)
	}
}

func TestFiscalHandler_InitializeFailures(t *testing.T) {
	t.Run("missing port", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		device := mocks.NewMockDevice(ctrl)

		h := NewFiscalHandler(model.HandlerFiscalPNP, zap.NewNop()).WithDevice(device)
		if h.Initialize(context.Background(), Settings{}) {
			t.Fatalf("expected failure without a port")
		}
	})

	t.Run("printer silent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		device := mocks.NewMockDevice(ctrl)

		gomock.InOrder(
			device.EXPECT().OpenPort("/dev/ttyS0").Return(true),
			device.EXPECT().CheckPrinter().Return(false),
			device.EXPECT().ClosePort(),
		)

		h := NewFiscalHandler(model.HandlerFiscalPNP, zap.NewNop()).WithDevice(device)
		if h.Initialize(context.Background(), Settings{"port": "/dev/ttyS0"}) {
			t.Fatalf("expected failure when the printer does not answer")
		}
		if resp := h.CheckStatus(context.Background()); resp.Message != "Handler not initialized" {
			t.Fatalf("unexpected message %q", resp.Message)
		}
	})
}

func TestFiscalHandler_PnPReportCommands(t *testing.T) {
	ctrl := gomock.NewController(t)
	device := mocks.NewMockDevice(ctrl)

	gomock.InOrder(
		device.EXPECT().OpenPort("COM3").Return(true),
		device.EXPECT().CheckPrinter().Return(true),
		device.EXPECT().SendCommand("9|Z|T").Return(true),
	)

	h := NewFiscalHandler(model.HandlerFiscalPNP, zap.NewNop()).WithDevice(device)
	if !h.Initialize(context.Background(), Settings{"port": "COM3"}) {
		t.Fatalf("expected initialization to succeed")
	}
	if resp := h.ProcessRequest(context.Background(), "z", nil); !resp.Success {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestFiscalHandler_ShutdownIsIdempotent(t *testing.T) {
	h, device := newFiscal(t)

	device.EXPECT().ClosePort().Times(1)

	if err := h.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := h.Shutdown(); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
	if resp := h.PrintReportX(context.Background()); resp.Message != "Handler not initialized" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

func TestFiscalHandler_CancelRequest(t *testing.T) {
	h, device := newFiscal(t)

	gomock.InOrder(
		device.EXPECT().SendCommand("7").Return(true),
		device.EXPECT().SendCommand("7").Return(false),
		device.EXPECT().ReadStatus().Return(model.PrinterStatus{ErrorCode: fiscal.ErrorInvalidCommand}, nil),
		device.EXPECT().SendCommand("I0X").Return(true),
	)

	if resp := h.ProcessRequest(context.Background(), "cancel", nil); !resp.Success || resp.Message != "Document cancelled" {
		t.Fatalf("unexpected cancel response %+v", resp)
	}
	resp := h.ProcessRequest(context.Background(), "CANCEL", nil)
	if resp.Success || !strings.HasPrefix(resp.Message, "Failed to cancel document. Error code:") {
		t.Fatalf("unexpected failed cancel response %+v", resp)
	}
	if resp := h.ProcessRequest(context.Background(), "X", nil); !resp.Success {
		t.Fatalf("other methods must still dispatch, got %+v", resp)
	}
}

func TestFiscalHandler_CreditNote(t *testing.T) {
	h, device := newFiscal(t)
	doc := sampleDocument()
	doc.OperationType = model.OperationCredit
	doc.AffectedDocument = &model.AffectedDocument{Number: "42", Date: "01/05/2024", Serial: "Z1B0000001"}

	gomock.InOrder(
		device.EXPECT().CheckPrinter().Return(true),
		device.EXPECT().ReadStatus().Return(standby, nil),
		device.EXPECT().SendCommand("iF*00000000042").Return(true),
		device.EXPECT().SendCommand("iD*01/05/2024").Return(true),
		device.EXPECT().SendCommand("iI*Z1B0000001").Return(true),
		device.EXPECT().SendCommand("iR*V-12345678").Return(true),
		device.EXPECT().SendCommand("iS*Jane Doe").Return(true),
		device.EXPECT().SendCommand("i04REF:F-0001").Return(true),
		device.EXPECT().SendCommand("d1000000125000002000Widget").Return(true),
		device.EXPECT().SendCommand("d0000000030000001000Nut").Return(true),
		device.EXPECT().SendCommand("201000000002000").Return(true),
		device.EXPECT().SendCommand("102").Return(true),
		device.EXPECT().ReadStatus().Return(standby, nil),
		device.EXPECT().UploadS1().Return(fiscal.S1Data{LastCreditNote: "00000007"}, nil),
	)

	resp := h.ProcessDocument(context.Background(), doc)
	if !resp.Success || resp.Message != "Credit note closed successfully" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Data["operation_type"] != "credit" || resp.Data["last_credit_note_number"] != "00000007" {
		t.Fatalf("unexpected data %v", resp.Data)
	}
}

func TestFiscalHandler_NonFiscalNoteSkipsPayments(t *testing.T) {
	h, device := newFiscal(t)
	doc := sampleDocument()
	doc.OperationType = model.OperationNote

	gomock.InOrder(
		device.EXPECT().CheckPrinter().Return(true),
		device.EXPECT().ReadStatus().Return(standby, nil),
		device.EXPECT().SendCommand("800Nota").Return(true),
		device.EXPECT().SendCommand("80*RIF/CI: V-12345678").Return(true),
		device.EXPECT().SendCommand("80*Nombre: Jane Doe").Return(true),
		device.EXPECT().SendCommand("80*Numero: F-0001").Return(true),
		device.EXPECT().SendCommand("80!-Widget x2 x12.50 Iva:16").Return(true),
		device.EXPECT().SendCommand("80!-Nut x1 x3.00 Iva:0").Return(true),
		device.EXPECT().SendCommand("810Monto Total: 32.00").Return(true),
		device.EXPECT().ReadStatus().Return(standby, nil),
		device.EXPECT().UploadS1().Return(fiscal.S1Data{}, nil),
	)

	resp := h.ProcessDocument(context.Background(), doc)
	if !resp.Success || resp.Message != "Non-fiscal note closed successfully" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

// recordingDevice accepts every command and keeps them in arrival order.
// SendCommand sleeps so that unserialized sequences would interleave.
type recordingDevice struct {
	mu       sync.Mutex
	commands []string
}

func (d *recordingDevice) OpenPort(name string) bool { return true }
func (d *recordingDevice) ClosePort()                {}
func (d *recordingDevice) CheckPrinter() bool        { return true }

func (d *recordingDevice) SendCommand(cmd string) bool {
	d.mu.Lock()
	d.commands = append(d.commands, cmd)
	d.mu.Unlock()
	time.Sleep(time.Millisecond)
	return true
}

func (d *recordingDevice) ReadStatus() (model.PrinterStatus, error) { return standby, nil }
func (d *recordingDevice) UploadS1() (fiscal.S1Data, error)         { return fiscal.S1Data{}, nil }

func TestFiscalHandler_ConcurrentDocumentsDoNotInterleave(t *testing.T) {
	device := &recordingDevice{}
	h := NewFiscalHandler(model.HandlerFiscalTFHKA, zap.NewNop()).WithDevice(device)
	if !h.Initialize(context.Background(), Settings{"port": "COM1"}) {
		t.Fatalf("expected initialization to succeed")
	}

	const docs, items = 8, 3
	var wg sync.WaitGroup
	for n := 0; n < docs; n++ {
		doc := sampleDocument()
		doc.CustomerVAT = fmt.Sprintf("V-%d", n)
		doc.DocumentNumber = fmt.Sprintf("D-%d", n)
		doc.Payments = nil
		doc.Items = nil
		for k := 0; k < items; k++ {
			doc.Items = append(doc.Items, model.LineItem{Name: fmt.Sprintf("Item-%d-%d", n, k)})
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if resp := h.ProcessDocument(context.Background(), doc); !resp.Success {
				t.Errorf("document %s failed: %s", doc.DocumentNumber, resp.Message)
			}
		}()
	}
	wg.Wait()

	// each document is iR*, iS*, i04REF, its items and the cash close
	const block = 3 + items + 1
	if len(device.commands) != docs*block {
		t.Fatalf("expected %d commands, got %d", docs*block, len(device.commands))
	}

	seen := make(map[string]bool)
	for i := 0; i < len(device.commands); i += block {
		seq := device.commands[i : i+block]
		vat := strings.TrimPrefix(seq[0], "iR*")
		n := strings.TrimPrefix(vat, "V-")
		if seen[n] {
			t.Fatalf("document %s printed twice", n)
		}
		seen[n] = true

		if seq[2] != "i04REF:D-"+n {
			t.Fatalf("sequence interleaved: %q", seq)
		}
		for k := 0; k < items; k++ {
			if !strings.HasSuffix(seq[3+k], fmt.Sprintf("Item-%s-%d", n, k)) {
				t.Fatalf("sequence interleaved: %q", seq)
			}
		}
		if seq[block-1] != "101" {
			t.Fatalf("expected the close last, got %q", seq)
		}
	}
}

// internal/infra/whatsapp/qr.go
package whatsapp

import (
	"io"

	"github.com/mdp/qrterminal/v3"
)

// QRPrinter returns a pairing presenter that draws codes on w.
func QRPrinter(w io.Writer) func(code string) {
	return func(code string) {
		qrterminal.GenerateHalfBlock(code, qrterminal.L, w)
	}
}

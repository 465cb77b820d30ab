// Package pdf renders invoice documents. It only consumes resolved
// snapshots and never touches billing state.
package pdf

import "context"

type Provider interface {
	GenerateInvoice(ctx context.Context, data InvoiceData) ([]byte, error)
}

package ledger

import (
	"context"
	"time"
)

// Operation names a ledger call for latency simulation
type Operation string

const (
	OpGetBalances          Operation = "get_balances"
	OpTransfer             Operation = "transfer"
	OpCreateInvoice        Operation = "create_invoice"
	OpPayInvoice           Operation = "pay_invoice"
	OpCreatePaymentRequest Operation = "create_payment_request"
	OpListTransactions     Operation = "list_transactions"
	OpListInvoices         Operation = "list_invoices"
	OpListPaymentRequests  Operation = "list_payment_requests"
	OpListFeed             Operation = "list_feed"
)

// Latency simulates network/chain latency before an operation runs.
// It must not abort: once an operation is invoked it always completes.
type Latency func(ctx context.Context, op Operation)

// NoLatency returns immediately
func NoLatency(context.Context, Operation) {}

// FixedLatency sleeps for the configured duration of each operation.
// Operations missing from delays do not wait.
func FixedLatency(delays map[Operation]time.Duration) Latency {
	copied := make(map[Operation]time.Duration, len(delays))
	for op, d := range delays {
		copied[op] = d
	}
	return func(_ context.Context, op Operation) {
		if d := copied[op]; d > 0 {
			time.Sleep(d)
		}
	}
}

// DefaultDelays mirrors the response times of the hosted dashboard mock
func DefaultDelays() map[Operation]time.Duration {
	return map[Operation]time.Duration{
		OpGetBalances:          300 * time.Millisecond,
		OpTransfer:             800 * time.Millisecond,
		OpCreateInvoice:        600 * time.Millisecond,
		OpPayInvoice:           800 * time.Millisecond,
		OpCreatePaymentRequest: 500 * time.Millisecond,
		OpListTransactions:     300 * time.Millisecond,
		OpListInvoices:         300 * time.Millisecond,
		OpListPaymentRequests:  300 * time.Millisecond,
		OpListFeed:             300 * time.Millisecond,
	}
}

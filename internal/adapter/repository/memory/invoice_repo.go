package memory

import (
	"context"
	"sync"

	"github.com/simaogato/cpay-backend/internal/domain"
)

// invoiceRepository implements domain.InvoiceRepository
type invoiceRepository struct {
	mu       sync.RWMutex
	invoices []*domain.Invoice // newest first
	byID     map[string]*domain.Invoice
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository() domain.InvoiceRepository {
	return &invoiceRepository{byID: make(map[string]*domain.Invoice)}
}

// Create adds a new invoice
func (r *invoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	if invoice == nil || invoice.ID == "" {
		return domain.InvalidInputf("invoice must have an ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[invoice.ID]; exists {
		return domain.InvalidInputf("invoice %s already exists", invoice.ID)
	}
	stored := invoice.Clone()
	r.invoices = prepend(r.invoices, stored)
	r.byID[stored.ID] = stored
	return nil
}

// GetByID retrieves a copy of an invoice
func (r *invoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	invoice, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFoundf("invoice %s not found", id)
	}
	return invoice.Clone(), nil
}

// Update replaces the stored invoice in place, keeping its position
func (r *invoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[invoice.ID]
	if !ok {
		return domain.NotFoundf("invoice %s not found", invoice.ID)
	}
	*stored = *invoice.Clone()
	return nil
}

// ListByAddress retrieves invoices where the address is merchant or payer
func (r *invoiceRepository) ListByAddress(ctx context.Context, address string) ([]*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Invoice, 0)
	for _, invoice := range r.invoices {
		if invoice.Involves(address) {
			result = append(result, invoice.Clone())
		}
	}
	return result, nil
}

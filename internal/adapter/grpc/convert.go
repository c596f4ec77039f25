package grpc

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/cpay-backend/internal/domain"
)

// Wire conventions: amounts are decimal strings, timestamps are unix
// milliseconds, absent optional values are null.

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms float64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}

func optionalString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func optionalMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return millis(*t)
}

func emptyAsNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func balancesToMap(b domain.Balances) map[string]any {
	return map[string]any{
		"address": b.Address,
		"celo":    domain.FormatAmount(b.CELO),
		"cusd":    domain.FormatAmount(b.CUSD),
	}
}

func transactionToMap(tx *domain.Transaction) map[string]any {
	return map[string]any{
		"id":        tx.ID,
		"type":      string(tx.Kind),
		"from":      tx.From,
		"to":        tx.To,
		"amount":    domain.FormatAmount(tx.Amount),
		"token":     string(tx.Token),
		"note":      tx.Note,
		"timestamp": millis(tx.Timestamp),
		"txHash":    tx.TxHash,
	}
}

func invoiceToMap(inv *domain.Invoice) map[string]any {
	return map[string]any{
		"id":          inv.ID,
		"merchant":    inv.Merchant,
		"payer":       optionalString(inv.Payer),
		"amount":      domain.FormatAmount(inv.Amount),
		"token":       string(inv.Token),
		"description": inv.Description,
		"status":      string(inv.Status),
		"createdAt":   millis(inv.CreatedAt),
		"paidAt":      optionalMillis(inv.PaidAt),
	}
}

func paymentRequestToMap(pr *domain.PaymentRequest) map[string]any {
	return map[string]any{
		"id":        pr.ID,
		"requester": pr.Requester,
		"payer":     pr.Payer,
		"amount":    domain.FormatAmount(pr.Amount),
		"token":     string(pr.Token),
		"note":      pr.Note,
		"createdAt": millis(pr.CreatedAt),
		"isPaid":    pr.IsPaid,
	}
}

func feedItemToMap(item *domain.FeedItem) map[string]any {
	return map[string]any{
		"id":        item.ID,
		"type":      string(item.Type),
		"actor":     item.Actor,
		"recipient": emptyAsNil(item.Recipient),
		"amount":    domain.FormatAmount(item.Amount),
		"token":     string(item.Token),
		"note":      item.Note,
		"invoiceId": emptyAsNil(item.InvoiceID),
		"timestamp": millis(item.Timestamp),
	}
}

func userToMap(u *domain.UserProfile) map[string]any {
	return map[string]any{
		"address":    u.Address,
		"username":   u.Username,
		"avatarSeed": u.AvatarSeed,
	}
}

func walletToMap(w domain.WalletState) map[string]any {
	var chainID any
	if w.IsConnected {
		chainID = w.ChainID
	}
	return map[string]any{
		"address":          emptyAsNil(w.Address),
		"isConnected":      w.IsConnected,
		"chainId":          chainID,
		"networkName":      w.NetworkName,
		"isCorrectNetwork": w.IsCorrectNetwork,
	}
}

func appConfigToMap(c domain.AppConfig) map[string]any {
	return map[string]any{
		"mockMode":   c.MockMode,
		"celoRpcUrl": c.CeloRPCURL,
		"chainId":    c.ChainID,
		"contracts": map[string]any{
			"merchantRegistry": c.Contracts.MerchantRegistry,
			"cPayPayments":     c.Contracts.CPayPayments,
			"cUSD":             c.Contracts.CUSD,
		},
	}
}

// listOf wraps converted items under key
func listOf[T any](key string, items []T, conv func(T) map[string]any) map[string]any {
	list := make([]any, 0, len(items))
	for _, item := range items {
		list = append(list, conv(item))
	}
	return map[string]any{key: list}
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("encoding response: %w", err)
	}
	return s, nil
}

// fields reads typed values out of a Struct
type fields map[string]*structpb.Value

func fieldsOf(s *structpb.Struct) fields {
	if s == nil {
		return fields{}
	}
	return s.GetFields()
}

func (f fields) str(key string) string {
	return strings.TrimSpace(f[key].GetStringValue())
}

func (f fields) num(key string) float64 {
	return f[key].GetNumberValue()
}

func (f fields) boolean(key string) bool {
	return f[key].GetBoolValue()
}

func (f fields) isNull(key string) bool {
	v, ok := f[key]
	if !ok || v == nil {
		return true
	}
	_, null := v.GetKind().(*structpb.Value_NullValue)
	return null
}

func (f fields) object(key string) fields {
	return fieldsOf(f[key].GetStructValue())
}

func (f fields) list(key string) []fields {
	values := f[key].GetListValue().GetValues()
	out := make([]fields, 0, len(values))
	for _, v := range values {
		out = append(out, fieldsOf(v.GetStructValue()))
	}
	return out
}

// amount parses and validates a wire amount. An empty value is passed on as
// zero so the ledger reports it as non-positive.
func (f fields) amount(key string) (decimal.Decimal, error) {
	raw := f.str(key)
	if raw == "" {
		return decimal.Zero, nil
	}
	return domain.ParseAmount(raw)
}

// token parses a wire token symbol; empty stays empty so the ledger reports it as required
func (f fields) token(key string) (domain.Token, error) {
	raw := f.str(key)
	if raw == "" {
		return "", nil
	}
	return domain.ParseToken(raw)
}

func (f fields) mustAmount(key string) decimal.Decimal {
	d, _ := decimal.NewFromString(f.str(key))
	return d
}

func (f fields) timestamp(key string) time.Time {
	return fromMillis(f.num(key))
}

func (f fields) optionalString(key string) *string {
	if f.isNull(key) {
		return nil
	}
	s := f.str(key)
	return &s
}

func (f fields) optionalTimestamp(key string) *time.Time {
	if f.isNull(key) {
		return nil
	}
	t := f.timestamp(key)
	return &t
}

func balancesFromFields(f fields) domain.Balances {
	return domain.Balances{
		Address: f.str("address"),
		CELO:    f.mustAmount("celo"),
		CUSD:    f.mustAmount("cusd"),
	}
}

func transactionFromFields(f fields) *domain.Transaction {
	return &domain.Transaction{
		ID:        f.str("id"),
		Kind:      domain.TransactionKind(f.str("type")),
		From:      f.str("from"),
		To:        f.str("to"),
		Amount:    f.mustAmount("amount"),
		Token:     domain.Token(f.str("token")),
		Note:      f.str("note"),
		Timestamp: f.timestamp("timestamp"),
		TxHash:    f.str("txHash"),
	}
}

func invoiceFromFields(f fields) *domain.Invoice {
	return &domain.Invoice{
		ID:          f.str("id"),
		Merchant:    f.str("merchant"),
		Payer:       f.optionalString("payer"),
		Amount:      f.mustAmount("amount"),
		Token:       domain.Token(f.str("token")),
		Description: f.str("description"),
		Status:      domain.InvoiceStatus(f.str("status")),
		CreatedAt:   f.timestamp("createdAt"),
		PaidAt:      f.optionalTimestamp("paidAt"),
	}
}

func paymentRequestFromFields(f fields) *domain.PaymentRequest {
	return &domain.PaymentRequest{
		ID:        f.str("id"),
		Requester: f.str("requester"),
		Payer:     f.str("payer"),
		Amount:    f.mustAmount("amount"),
		Token:     domain.Token(f.str("token")),
		Note:      f.str("note"),
		CreatedAt: f.timestamp("createdAt"),
		IsPaid:    f.boolean("isPaid"),
	}
}

func feedItemFromFields(f fields) *domain.FeedItem {
	return &domain.FeedItem{
		ID:        f.str("id"),
		Type:      domain.FeedItemType(f.str("type")),
		Actor:     f.str("actor"),
		Recipient: f.str("recipient"),
		Amount:    f.mustAmount("amount"),
		Token:     domain.Token(f.str("token")),
		Note:      f.str("note"),
		InvoiceID: f.str("invoiceId"),
		Timestamp: f.timestamp("timestamp"),
	}
}

func userFromFields(f fields) *domain.UserProfile {
	return &domain.UserProfile{
		Address:    f.str("address"),
		Username:   f.str("username"),
		AvatarSeed: f.str("avatarSeed"),
	}
}

func walletFromFields(f fields) domain.WalletState {
	return domain.WalletState{
		Address:          f.str("address"),
		IsConnected:      f.boolean("isConnected"),
		ChainID:          int64(f.num("chainId")),
		NetworkName:      f.str("networkName"),
		IsCorrectNetwork: f.boolean("isCorrectNetwork"),
	}
}

func appConfigFromFields(f fields) domain.AppConfig {
	contracts := f.object("contracts")
	return domain.AppConfig{
		MockMode:   f.boolean("mockMode"),
		CeloRPCURL: f.str("celoRpcUrl"),
		ChainID:    int64(f.num("chainId")),
		Contracts: domain.ContractAddresses{
			MerchantRegistry: contracts.str("merchantRegistry"),
			CPayPayments:     contracts.str("cPayPayments"),
			CUSD:             contracts.str("cUSD"),
		},
	}
}

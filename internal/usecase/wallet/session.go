package wallet

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/simaogato/cpay-backend/internal/domain"
)

var validate = validator.New()

// ConnectInput represents a wallet connection attempt.
// In mock mode both fields may be empty.
type ConnectInput struct {
	Address string `validate:"omitempty,eth_addr"`
	ChainID int64
}

// SessionService holds the wallet of the single local session
type SessionService struct {
	mu          sync.RWMutex
	mockMode    bool
	demoAddress string
	chainID     int64
	state       domain.WalletState
}

// NewSessionService creates a disconnected session.
// chainID is the network the session connects to (and switches to) by default.
func NewSessionService(mockMode bool, demoAddress string, chainID int64) *SessionService {
	if chainID == 0 {
		chainID = domain.DefaultChainID
	}
	return &SessionService{
		mockMode:    mockMode,
		demoAddress: domain.NormalizeAddress(demoAddress),
		chainID:     chainID,
		state:       domain.DisconnectedWallet(),
	}
}

// Connect attaches a wallet to the session
// Logic:
//  1. Mock mode: an empty address becomes the demo address, the chain is
//     always the default chain
//  2. Otherwise: the address reported by the wallet is required and the
//     reported chain decides IsCorrectNetwork
//
// The stored address is lowercase, the spelling the ledger keys accounts by.
func (s *SessionService) Connect(ctx context.Context, input ConnectInput) (domain.WalletState, error) {
	input.Address = domain.NormalizeAddress(input.Address)
	if err := validate.StructCtx(ctx, input); err != nil {
		return domain.WalletState{}, domain.InvalidInputf("invalid wallet address %q", input.Address)
	}

	address := input.Address
	chainID := input.ChainID
	if s.mockMode {
		if address == "" {
			address = s.demoAddress
		}
		chainID = s.chainID
	}
	if address == "" {
		return domain.WalletState{}, domain.InvalidInputf("no wallet detected: an address is required outside mock mode")
	}
	if chainID == 0 {
		chainID = s.chainID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = stateFor(address, chainID)
	return s.state, nil
}

// Disconnect clears the session
func (s *SessionService) Disconnect(ctx context.Context) domain.WalletState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = domain.DisconnectedWallet()
	return s.state
}

// SwitchNetwork moves the connected wallet to the default chain
func (s *SessionService) SwitchNetwork(ctx context.Context) (domain.WalletState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.IsConnected {
		return domain.WalletState{}, domain.InvalidInputf("wallet not connected")
	}
	s.state = stateFor(s.state.Address, s.chainID)
	return s.state, nil
}

// ChainChanged records a chain reported by the wallet itself.
// It is a no-op while disconnected.
func (s *SessionService) ChainChanged(ctx context.Context, chainID int64) domain.WalletState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsConnected {
		s.state = stateFor(s.state.Address, chainID)
	}
	return s.state
}

// State returns the current wallet
func (s *SessionService) State() domain.WalletState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func stateFor(address string, chainID int64) domain.WalletState {
	return domain.WalletState{
		Address:          address,
		IsConnected:      true,
		ChainID:          chainID,
		NetworkName:      domain.NetworkName(chainID),
		IsCorrectNetwork: domain.IsSupportedNetwork(chainID),
	}
}

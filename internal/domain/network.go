package domain

// Celo chain IDs
const (
	ChainIDCeloMainnet   int64 = 42220
	ChainIDCeloAlfajores int64 = 44787
)

// DefaultChainID is the network a mock wallet connects to
const DefaultChainID = ChainIDCeloAlfajores

// NetworkName returns the display name of a chain ID
func NetworkName(chainID int64) string {
	switch chainID {
	case ChainIDCeloMainnet:
		return "Celo Mainnet"
	case ChainIDCeloAlfajores:
		return "Celo Alfajores"
	default:
		return "Unknown Network"
	}
}

// IsSupportedNetwork reports whether the chain ID is a Celo network
func IsSupportedNetwork(chainID int64) bool {
	return chainID == ChainIDCeloMainnet || chainID == ChainIDCeloAlfajores
}

// WalletState describes the connected wallet of the current session
type WalletState struct {
	Address          string
	IsConnected      bool
	ChainID          int64
	NetworkName      string
	IsCorrectNetwork bool
}

// DisconnectedWallet is the state before any wallet connects
func DisconnectedWallet() WalletState {
	return WalletState{NetworkName: "Not Connected"}
}

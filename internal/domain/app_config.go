package domain

// ContractAddresses are the on-chain contracts a real-mode client talks to
type ContractAddresses struct {
	MerchantRegistry string
	CPayPayments     string
	CUSD             string
}

// AppConfig is the configuration exposed to dashboard clients
type AppConfig struct {
	MockMode   bool
	CeloRPCURL string
	ChainID    int64
	Contracts  ContractAddresses
}

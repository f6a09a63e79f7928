package config

// Chain query service base URLs per network.
const (
	MainnetEndpoint = "https://cardano-mainnet.blockfrost.io/api/v0"
	PreprodEndpoint = "https://cardano-preprod.blockfrost.io/api/v0"
	PreviewEndpoint = "https://cardano-preview.blockfrost.io/api/v0"
)

// Explorer base URLs per network, for human-facing links.
const (
	mainnetExplorer = "https://cardanoscan.io"
	preprodExplorer = "https://preprod.cardanoscan.io"
	previewExplorer = "https://preview.cardanoscan.io"
)

// DefaultPreprod returns the default configuration for the preprod
// test network.
func DefaultPreprod() *Config {
	return &Config{
		Network: Preprod,
		DataDir: DefaultDataDir(),
		ChainQuery: ChainQueryConfig{
			Endpoint:   PreprodEndpoint,
			TimeoutSec: 15,
		},
		Auth: AuthConfig{
			OpenMode: true,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultMainnet returns the default configuration for mainnet.
func DefaultMainnet() *Config {
	cfg := DefaultPreprod()
	cfg.Network = Mainnet
	cfg.ChainQuery.Endpoint = MainnetEndpoint
	return cfg
}

// Default returns the default configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Mainnet:
		return DefaultMainnet()
	case Preview:
		cfg := DefaultPreprod()
		cfg.Network = Preview
		cfg.ChainQuery.Endpoint = PreviewEndpoint
		return cfg
	default:
		return DefaultPreprod()
	}
}

// Endpoint returns the default chain query endpoint for a network.
func Endpoint(network NetworkType) string {
	switch network {
	case Mainnet:
		return MainnetEndpoint
	case Preview:
		return PreviewEndpoint
	default:
		return PreprodEndpoint
	}
}

// ExplorerTxURL returns the explorer page for a transaction hash.
func ExplorerTxURL(network NetworkType, txHash string) string {
	return explorerBase(network) + "/transaction/" + txHash
}

// ExplorerTokenURL returns the explorer page for an asset.
func ExplorerTokenURL(network NetworkType, assetID string) string {
	return explorerBase(network) + "/token/" + assetID
}

func explorerBase(network NetworkType) string {
	switch network {
	case Mainnet:
		return mainnetExplorer
	case Preview:
		return previewExplorer
	default:
		return preprodExplorer
	}
}

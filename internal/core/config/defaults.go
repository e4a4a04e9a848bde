package config

import "github.com/vietddude/netwatch/internal/core/domain"

// Default returns the built-in configuration for the Hoodi testnet.
func Default() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:   "https://light-hoodi.beaconcha.in/api/v1",
			RateLimit: 1,
		},
		Network: NetworkConfig{
			Name:             "Hoodi Testnet",
			ChainID:          560048,
			NetworkID:        560048,
			LaunchDate:       "2025-03-17",
			GenesisTimestamp: 1742213400,
			SecondsPerSlot:   12,
			SlotsPerEpoch:    32,
			Consensus:        "Proof of Stake",
			LTS:              "December 2027",
			EOL:              "December 2028",
		},
		Forks: []StaticFork{
			{Name: "Merge / Shapella / Dencun", Epoch: 0, ExecutionVersion: "Cancun", ConsensusVersion: "Deneb", IsGenesis: true},
			{Name: "Pectra (Prague/Electra)", Timestamp: 1742999832, Epoch: 2048, ExecutionVersion: "Prague", ConsensusVersion: "Electra"},
			{Name: "Fusaka (Osaka/Fulu)", Timestamp: 1761677592, Epoch: 50688, ExecutionVersion: "Osaka", ConsensusVersion: "Fulu"},
			{Name: "BPO 1", Timestamp: 1762365720, Epoch: 52480, ExecutionVersion: "Osaka", ConsensusVersion: "Fulu"},
			{Name: "BPO 2", Timestamp: 1762955544, Epoch: 54016, ExecutionVersion: "Osaka", ConsensusVersion: "Fulu"},
		},
		Wallet: WalletConfig{
			ChainID:   "0x88B30",
			ChainName: "Hoodi Testnet",
			NativeCurrency: NativeCurrency{
				Name:     "Hoodi Ether",
				Symbol:   "ETH",
				Decimals: 18,
			},
			RPCURLs:           []string{"https://rpc.hoodi.ethpandaops.io"},
			BlockExplorerURLs: []string{"https://hoodi.etherscan.io"},
		},
		Endpoints: []domain.Endpoint{
			{ID: "ethpandaops-rpc", Kind: domain.EndpointRPC, URL: "https://rpc.hoodi.ethpandaops.io"},
			{ID: "publicnode-rpc", Kind: domain.EndpointRPC, URL: "https://ethereum-hoodi-rpc.publicnode.com"},
			{ID: "ethpandaops-checkpoint", Kind: domain.EndpointCheckpoint, URL: "https://checkpoint-sync.hoodi.ethpandaops.io"},
		},
		Probe: ProbeConfig{
			Origin: "https://hoodi.dev",
		},
	}
}

package main

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/tandalabs/tanda-gateway/core"
	"github.com/tandalabs/tanda-gateway/service/agent"
	"github.com/tandalabs/tanda-gateway/service/claim"
	"github.com/tandalabs/tanda-gateway/service/trustline"
	"github.com/tandalabs/tanda-gateway/service/wallet"
	"github.com/tandalabs/tanda-gateway/service/xpayment"
)

var serviceSet = wire.NewSet(
	provideAgentConfig,
	agent.New,
	wire.Bind(new(core.OrderService), new(*agent.Client)),
	wire.Bind(new(core.GroupService), new(*agent.Client)),
	provideBridgeConfig,
	wallet.NewBridge,
	wallet.New,
	provideHorizon,
	provideTrustlineLedger,
	provideChallengeLedger,
	trustline.New,
	xpayment.New,
	provideClaimConfig,
	claim.New,
)

func provideAgentConfig(v *viper.Viper) agent.Config {
	return agent.Config{
		BaseURL: v.GetString("agent.base_url"),
	}
}

func provideBridgeConfig(v *viper.Viper) wallet.BridgeConfig {
	return wallet.BridgeConfig{
		BaseURL: v.GetString("wallet.base_url"),
	}
}

func provideHorizon(v *viper.Viper) *horizonclient.Client {
	v.SetDefault("horizon.url", "https://horizon-testnet.stellar.org")

	return &horizonclient.Client{
		HorizonURL: v.GetString("horizon.url"),
	}
}

func provideTrustlineLedger(client *horizonclient.Client) trustline.Ledger {
	return client
}

func provideChallengeLedger(client *horizonclient.Client) xpayment.Ledger {
	return client
}

func provideClaimConfig(v *viper.Viper) claim.Config {
	return claim.Config{
		AssetCode:   v.GetString("asset.code"),
		AssetIssuer: v.GetString("asset.issuer"),
	}
}

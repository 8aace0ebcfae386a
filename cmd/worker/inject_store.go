package main

import (
	"fmt"

	"github.com/google/wire"
	_ "github.com/lib/pq"
	"github.com/spf13/viper"
	"github.com/tandalabs/tanda-gateway/core"
	"github.com/tandalabs/tanda-gateway/store/db"
	"github.com/tandalabs/tanda-gateway/store/verification"
	"github.com/tsenart/nap"
)

var storeSet = wire.NewSet(
	provideVerificationStore,
)

// The worker sweeps a shared store, so unlike the server it has no
// in-process fallback.
func provideVerificationStore(v *viper.Viper) (core.VerificationStore, func(), error) {
	dsn := v.GetString("db.dsn")
	if dsn == "" {
		return nil, nil, fmt.Errorf("%w: db.dsn", core.ErrConfigMissing)
	}

	conn, err := nap.Open("postgres", dsn)
	if err != nil {
		return nil, nil, err
	}

	if err := db.Migrate(conn.Master()); err != nil {
		return nil, nil, err
	}

	return verification.New(conn), func() { _ = conn.Close() }, nil
}

package main

import (
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

// provideVerificationStore prefers postgres when a dsn is configured and
// falls back to the in-process store, which is enough for a single replica.
func provideVerificationStore(v *viper.Viper) (core.VerificationStore, func(), error) {
	dsn := v.GetString("db.dsn")
	if dsn == "" {
		return verification.NewMemory(), func() {}, nil
	}

	for _, replica := range v.GetStringSlice("db.replicas") {
		dsn += ";" + replica
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

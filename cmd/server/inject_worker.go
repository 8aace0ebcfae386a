package main

import (
	"github.com/google/wire"
	"github.com/tandalabs/tanda-gateway/worker/sweeper"
)

var workerSet = wire.NewSet(
	sweeper.New,
)

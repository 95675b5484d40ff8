// Package automaxprocs sizes GOMAXPROCS to the container CPU quota.
package automaxprocs

import (
	"fmt"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/pkg/logger"
	"github.com/gaze-network/stamp-indexer/pkg/logger/slogx"
	"go.uber.org/automaxprocs/maxprocs"
)

// Init sets GOMAXPROCS from the Linux CPU quota. It's a no-op elsewhere and honors an explicit `GOMAXPROCS`.
func Init() error {
	log := logger.With(
		slogx.String("package", "automaxprocs"),
		slogx.Int("prevMaxProcs", runtime.GOMAXPROCS(0)),
	)
	if _, err := maxprocs.Set(maxprocs.Min(1), maxprocs.Logger(func(format string, v ...any) {
		log.Info(fmt.Sprintf(format, v...), slogx.Int("maxProcs", runtime.GOMAXPROCS(0)))
	})); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

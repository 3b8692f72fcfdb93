package console

import (
	"bufio"
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/cory-johannsen/goodnight/internal/game/menu"
)

// ReadKeys parses one key name per line from r and sends the keys on out
// until r is exhausted or ctx is done. Unknown names are logged and skipped.
//
// Postcondition: Returns nil at end of input or when ctx is done, otherwise
// the read error.
func ReadKeys(ctx context.Context, r io.Reader, out chan<- menu.Key, logger *zap.Logger) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		k, err := menu.ParseKey(sc.Text())
		if err != nil {
			logger.Warn("ignoring input", zap.Error(err))
			continue
		}
		select {
		case out <- k:
		case <-ctx.Done():
			return nil
		}
	}
	return sc.Err()
}

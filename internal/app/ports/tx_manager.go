package ports

import "context"

// TxManager makes the episode report and its events land together or not at all.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

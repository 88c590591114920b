package memory

import "context"

type TxManager struct {
	store *Store
}

func NewTxManager(store *Store) TxManager {
	return TxManager{store: store}
}

// RunInTx holds the store's write lock while fn runs. When fn fails, every
// episode and event written during the call is discarded.
func (t TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	saved := t.store.checkpoint()
	if err := fn(ctx); err != nil {
		t.store.restore(saved)
		return err
	}
	return nil
}

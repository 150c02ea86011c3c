package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rajasekharstrikes1/society-pay/internal/infrastructure/outbox"
)

type stubSender struct {
	fail bool
	sent [][]string
}

func (s *stubSender) SendTemplateMessage(_ context.Context, to, template string, params []string) error {
	if s.fail {
		return errors.New("gateway unreachable")
	}
	s.sent = append(s.sent, append([]string{to, template}, params...))
	return nil
}

type alwaysOnline struct{}

func (alwaysOnline) IsOnline() bool { return true }

func newTestStore(t *testing.T) *outbox.Store {
	t.Helper()
	store, err := outbox.Open(filepath.Join(t.TempDir(), "outbox.db"), "outbox")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestQueueSendsDirectly(t *testing.T) {
	store := newTestStore(t)
	sender := &stubSender{}
	n := NewNotifier(store, alwaysOnline{}, sender, zap.NewNop(), NotifierConfig{})

	require.NoError(t, n.Queue(context.Background(), "919876543210", "payment_confirmation", []string{"Green Meadows"}))
	require.Len(t, sender.sent, 1)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestQueueBuffersOnFailure(t *testing.T) {
	store := newTestStore(t)
	sender := &stubSender{fail: true}
	n := NewNotifier(store, alwaysOnline{}, sender, zap.NewNop(), NotifierConfig{})

	require.NoError(t, n.Queue(context.Background(), "919876543210", "payment_confirmation", nil))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestDrainDeliversBufferedMessages(t *testing.T) {
	store := newTestStore(t)
	sender := &stubSender{fail: true}
	n := NewNotifier(store, alwaysOnline{}, sender, zap.NewNop(), NotifierConfig{})

	require.NoError(t, n.Queue(context.Background(), "919876543210", "payment_confirmation", nil))

	// Gateway recovers; the drain empties the outbox.
	sender.fail = false
	require.NoError(t, n.Drain(context.Background()))
	require.Len(t, sender.sent, 1)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestDrainDropsAfterMaxRetries(t *testing.T) {
	store := newTestStore(t)
	sender := &stubSender{fail: true}
	n := NewNotifier(store, alwaysOnline{}, sender, zap.NewNop(), NotifierConfig{MaxRetries: 2, Retention: time.Hour})

	require.NoError(t, n.Queue(context.Background(), "919876543210", "payment_confirmation", nil))

	// First drain requeues with retries=1, second drain hits the cap and drops.
	require.NoError(t, n.Drain(context.Background()))
	require.NoError(t, n.Drain(context.Background()))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-admin-client/session"
)

func TestNoticeCenter(t *testing.T) {
	t.Run("published notices are listed oldest first", func(t *testing.T) {
		nc := session.NewNoticeCenter(time.Minute)
		defer nc.Close()

		nc.Publish("server", "first")
		time.Sleep(time.Millisecond)
		nc.Publish("network", "second")

		active := nc.Active()
		require.Len(t, active, 2)
		require.Equal(t, "first", active[0].Message)
		require.Equal(t, "second", active[1].Message)
		require.Equal(t, "server", active[0].Kind)
	})

	t.Run("notices auto-dismiss after the ttl", func(t *testing.T) {
		nc := session.NewNoticeCenter(10 * time.Millisecond)
		defer nc.Close()

		nc.Publish("timeout", "slow request")
		require.Len(t, nc.Active(), 1)

		require.Eventually(t, func() bool {
			return len(nc.Active()) == 0
		}, time.Second, time.Millisecond)
	})

	t.Run("dismiss cancels the expiry task", func(t *testing.T) {
		nc := session.NewNoticeCenter(time.Minute)
		defer nc.Close()

		id := nc.Publish("validation", "bad input")
		nc.Dismiss(id)
		require.Empty(t, nc.Active())

		// Dismissing again must be a no-op.
		nc.Dismiss(id)
		nc.Dismiss("no-such-id")
	})

	t.Run("notify implements the pipeline notifier", func(t *testing.T) {
		nc := session.NewNoticeCenter(time.Minute)
		defer nc.Close()

		nc.Notify("unauthorized", "session expired")
		active := nc.Active()
		require.Len(t, active, 1)
		require.Equal(t, "unauthorized", active[0].Kind)
	})

	t.Run("close drops every pending notice", func(t *testing.T) {
		nc := session.NewNoticeCenter(time.Minute)
		nc.Publish("server", "a")
		nc.Publish("server", "b")
		nc.Close()
		require.Empty(t, nc.Active())
	})
}

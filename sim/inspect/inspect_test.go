package inspect

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterDeliversFrameSummary(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	srv := httptest.NewServer(b)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return b.Count() == 1 }, time.Second, 5*time.Millisecond)

	b.Publish(FrameSummary{Frame: 42, FPS: 60})

	var got FrameSummary
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, uint64(42), got.Frame)
	assert.Equal(t, 60.0, got.FPS)
}

func TestPublishWithoutSubscribersDoesNotBlock(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()
	assert.NotPanics(t, func() { b.Publish(FrameSummary{Frame: 1}) })
}

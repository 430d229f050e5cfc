package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/recruitportal/internal/app/models"
	"github.com/yigit/recruitportal/internal/app/models/dto"
	"github.com/yigit/recruitportal/internal/pkg/apperrors"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.done
	})
	return hub
}

func serve(t *testing.T, hub *Hub, sub SubscriberFunc) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", NewHandler(hub, sub, nil, zerolog.Nop()).HandleConnection)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func financeOnly(track models.Track, positions []string) bool {
	if track == models.TrackMember {
		return true
	}
	for _, p := range positions {
		if p == "finance" {
			return true
		}
	}
	return false
}

func TestEventsRespectTrackAndPurview(t *testing.T) {
	hub := startHub(t)
	srv := serve(t, hub, func(*gin.Context) (Subscriber, error) {
		return Subscriber{UserID: uuid.New(), Visible: financeOnly}, nil
	})
	conn := dial(t, srv, "?tracks=committee")
	waitForClients(t, hub, 1)

	hidden := models.ApplicationEvent{Type: models.EventStatusChanged, ApplicationID: uuid.New(), Track: models.TrackCommittee, Positions: []string{"technology"}}
	otherTrack := models.ApplicationEvent{Type: models.EventStatusChanged, ApplicationID: uuid.New(), Track: models.TrackMember}
	visible := models.ApplicationEvent{Type: models.EventStatusChanged, ApplicationID: uuid.New(), Track: models.TrackCommittee, NewStatus: models.StatusEvaluating, Positions: []string{"finance"}}

	hub.Publish(hidden)
	hub.Publish(otherTrack)
	hub.Publish(visible)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got models.ApplicationEvent
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, visible.ApplicationID, got.ApplicationID)
	assert.Equal(t, models.StatusEvaluating, got.NewStatus)
	assert.NotContains(t, string(data), "positions")
}

func TestRejectsUnauthenticated(t *testing.T) {
	hub := startHub(t)
	srv := serve(t, hub, func(*gin.Context) (Subscriber, error) {
		return Subscriber{}, errors.New("no token")
	})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestRejectsNonReviewers(t *testing.T) {
	hub := startHub(t)
	srv := serve(t, hub, func(*gin.Context) (Subscriber, error) {
		return Subscriber{}, apperrors.NewForbiddenError("live feed is limited to reviewers")
	})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, dto.ErrorCodeForbidden, body.Error.Code)
	assert.Equal(t, "live feed is limited to reviewers", body.Error.Message)
}

func TestRejectsUnknownTrack(t *testing.T) {
	_, err := parseTracks("committee, alumni")
	assert.EqualError(t, err, "unknown track alumni")

	tracks, err := parseTracks("")
	require.NoError(t, err)
	assert.Equal(t, models.Tracks, tracks)
}

func TestDisconnectUnregisters(t *testing.T) {
	hub := startHub(t)
	srv := serve(t, hub, func(*gin.Context) (Subscriber, error) {
		return Subscriber{UserID: uuid.New()}, nil
	})

	conn := dial(t, srv, "")
	waitForClients(t, hub, 1)
	conn.Close()
	waitForClients(t, hub, 0)
}

func TestPublishAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	cancel()
	<-hub.done

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			hub.Publish(models.ApplicationEvent{Track: models.TrackEA})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked after hub stopped")
	}
}

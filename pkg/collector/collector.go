// Package collector is a local stand-in for the Mixpanel ingestion endpoint.
// It accepts GET /track and GET /engage, decodes the data parameter and hands
// every payload to a subscriber channel.
package collector

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/brevdev/mixpanel-cli/pkg/command"
	breverrors "github.com/brevdev/mixpanel-cli/pkg/errors"
	"github.com/brevdev/mixpanel-cli/pkg/payload"
)

const (
	defaultBuffer = 64
	ackBody       = "1"
	rejectBody    = "0"
)

// Received is one accepted request.
type Received struct {
	ID         string
	Endpoint   string
	Query      url.Values
	Payload    gjson.Result
	ReceivedAt time.Time
}

type Collector struct {
	log      *zap.Logger
	received chan Received
	router   *gin.Engine
}

// New builds a collector whose channel holds buffer payloads; when it is
// full further payloads are acknowledged but dropped.
func New(log *zap.Logger, buffer int) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	c := &Collector{
		log:      log,
		received: make(chan Received, buffer),
		router:   r,
	}

	r.GET(command.TrackEndpoint, c.handle(command.TrackEndpoint))
	r.GET(command.EngageEndpoint, c.handle(command.EngageEndpoint))
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return c
}

func (c *Collector) Handler() http.Handler {
	return c.router
}

func (c *Collector) Received() <-chan Received {
	return c.received
}

// Next waits for the next payload or for ctx to end.
func (c *Collector) Next(ctx context.Context) (Received, error) {
	select {
	case r := <-c.received:
		return r, nil
	case <-ctx.Done():
		return Received{}, breverrors.WrapAndTrace(ctx.Err())
	}
}

func (c *Collector) handle(endpoint string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		data := ctx.Query("data")
		decoded, err := payload.Decode(data)
		if err != nil {
			c.log.Warn("rejecting undecodable payload", zap.String("endpoint", endpoint), zap.Error(err))
			ctx.String(http.StatusBadRequest, rejectBody)
			return
		}

		rec := Received{
			ID:         uuid.NewString(),
			Endpoint:   endpoint,
			Query:      ctx.Request.URL.Query(),
			Payload:    decoded,
			ReceivedAt: time.Now(),
		}
		select {
		case c.received <- rec:
			c.log.Debug("payload received", zap.String("id", rec.ID), zap.String("endpoint", endpoint))
		default:
			c.log.Warn("subscriber buffer full, dropping payload", zap.String("id", rec.ID))
		}
		ctx.String(http.StatusOK, ackBody)
	}
}

// ListenAndServe serves on addr until ctx is cancelled.
func (c *Collector) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           c.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	c.log.Info("collector listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return breverrors.WrapAndTrace(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return breverrors.WrapAndTrace(err)
	}
	c.log.Info("collector stopped")
	return nil
}

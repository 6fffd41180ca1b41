package telemetry

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/estianp/TinyPedalBroadcast/pkg/caster"
	"github.com/estianp/TinyPedalBroadcast/pkg/model"
)

const (
	mtSession  = "session"
	mtVehicles = "vehicles"

	receiveTimeout = 5 * time.Second
	redialBackoff  = 5 * time.Second
)

type Message struct {
	MessageType string          `json:"type"`
	Body        json.RawMessage `json:"body,omitempty"`
}

// Client keeps a websocket connection to the sim server's telemetry feed
// and caches the latest session and vehicle data. It implements Reader:
// the spotter pulls Frame once per tick without touching the network.
type Client struct {
	serverName string
	serverID   string
	feedURL    string

	sessionCaster  caster.ChannelCaster[model.SessionSample]
	vehiclesCaster caster.ChannelCaster[[]model.VehicleSample]

	mu       sync.Mutex
	session  model.SessionSample
	vehicles []model.VehicleSample
	fresh    bool
}

func NewClient(serverName, serverID, feedURL string) *Client {
	return &Client{
		serverName:     serverName,
		serverID:       serverID,
		feedURL:        feedURL,
		sessionCaster:  caster.JSONChannelCaster[model.SessionSample]{},
		vehiclesCaster: caster.JSONChannelCaster[[]model.VehicleSample]{},
	}
}

// Frame returns a copy of the latest snapshot. ok is false until the
// first data arrives and again once the feed goes stale or disconnects.
func (c *Client) Frame() (model.Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.fresh {
		return model.Frame{}, false
	}
	frame := model.Frame{
		Session:  c.session,
		Vehicles: make([]model.VehicleSample, len(c.vehicles)),
	}
	copy(frame.Vehicles, c.vehicles)
	frame.Session.ServerName = c.serverName
	frame.Session.ServerID = c.serverID
	return frame, true
}

// Run dials the feed and keeps reading until ctx is done, redialing on
// every connection loss.
func (c *Client) Run(ctx context.Context) {
	for {
		err := c.readFeed(ctx)
		if err != nil {
			log.Printf("Feed error for %s: %s", c.serverName, err.Error())
		}
		c.markStale()

		select {
		case <-ctx.Done():
			return
		case <-time.After(redialBackoff):
		}
	}
}

func (c *Client) readFeed(ctx context.Context) error {
	urlString := strings.TrimPrefix(strings.TrimPrefix(c.feedURL, "https://"), "http://")
	u := url.URL{Scheme: "ws", Host: urlString, Path: "/websocket/telemetry"}

	dealer := &websocket.Dialer{
		HandshakeTimeout:  10 * time.Second,
		EnableCompression: true,
	}
	conn, _, err := dealer.Dial(u.String(), nil)
	if err != nil {
		return errors.Wrapf(err, "connecting to %s", u.String())
	}
	log.Printf("connected to %s", u.String())
	defer conn.Close()

	doneErr := make(chan error)
	messageChan := make(chan Message)
	go c.dispatchMessage(ctx, messageChan, doneErr)

	go func() {
		defer close(doneErr)
		for {
			var m Message
			err := conn.ReadJSON(&m)
			if err != nil {
				doneErr <- errors.Wrap(err, "read")
				return
			}
			messageChan <- m
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-doneErr:
		return err
	}
}

func (c *Client) dispatchMessage(ctx context.Context, messageChan <-chan Message, doneChan <-chan error) {
	timeout := time.After(receiveTimeout)

	for {
		select {
		case <-ctx.Done():
			return
		case <-doneChan:
			return
		case <-timeout:
			c.markStale()
			timeout = time.After(receiveTimeout)
		case m := <-messageChan:
			timeout = time.After(receiveTimeout)
			switch m.MessageType {
			case mtSession:
				body, err := c.sessionCaster.From(string(m.Body))
				if err != nil {
					log.Printf("Error decoding session: %s\n", err.Error())
					continue
				}
				c.setSession(body)
			case mtVehicles:
				body, err := c.vehiclesCaster.From(string(m.Body))
				if err != nil {
					log.Printf("Error decoding vehicles: %s\n", err.Error())
					continue
				}
				c.setVehicles(body)
			}
		}
	}
}

func (c *Client) setSession(s model.SessionSample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
	c.fresh = true
}

func (c *Client) setVehicles(v []model.VehicleSample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vehicles = v
}

func (c *Client) markStale() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fresh = false
}

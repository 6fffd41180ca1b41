package notification

import (
	"context"
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nikoksr/notify"
	"github.com/nikoksr/notify/service/telegram"

	"github.com/estianp/TinyPedalBroadcast/pkg/helper"
	"github.com/estianp/TinyPedalBroadcast/pkg/model"
	"github.com/estianp/TinyPedalBroadcast/pkg/pubsub"
	"github.com/estianp/TinyPedalBroadcast/pkg/settings"
)

// Lister resolves which chats subscribed to an event kind.
type Lister interface {
	ListUsersForEvent(event string) ([]settings.TelegramUser, error)
}

// Manager forwards session-start and stint-close events from the spotter
// to subscribed Telegram chats.
type Manager struct {
	ctx      context.Context
	lister   Lister
	bot      *tgbotapi.BotAPI
	serverID string
}

func NewManager(ctx context.Context, bot *tgbotapi.BotAPI, lister Lister, serverID string) *Manager {
	return &Manager{
		ctx:      ctx,
		lister:   lister,
		bot:      bot,
		serverID: serverID,
	}
}

func (m *Manager) Start(exitChan <-chan bool) {
	startedChan := pubsub.SessionStartedPubSub.Subscribe(pubsub.PubSubSessionStartedPreffix + m.serverID)
	closedChan := pubsub.StintClosedPubSub.Subscribe(pubsub.PubSubStintClosedPreffix + m.serverID)
	for {
		select {
		case <-exitChan:
			return
		case <-m.ctx.Done():
			return
		case started := <-startedChan:
			log.Printf("Session started: %s -> %s\n", started.ServerName, started.SessionType)
			m.handleNotification(settings.SessionStart, "New session started:", started.String())
		case closed := <-closedChan:
			m.handleNotification(settings.StintClose, "Stint finished:", formatStintClosed(closed))
		}
	}
}

func (m *Manager) handleNotification(event, subject, message string) {
	recipients, err := m.lister.ListUsersForEvent(event)
	if err != nil {
		log.Printf("Error listing users for %s: %s", event, err.Error())
		return
	}
	if len(recipients) == 0 {
		return
	}
	log.Printf("Sending %s notification to %d telegram users\n", event, len(recipients))
	err = m.sendNotification(recipients, subject, message)
	if err != nil {
		log.Printf("Error notifying users: %s", err.Error())
	}
}

func (m *Manager) sendNotification(tusers []settings.TelegramUser, subject, message string) error {
	tg := &telegram.Telegram{}
	tg.SetClient(m.bot)

	for _, tuser := range tusers {
		chatID, _ := strconv.ParseInt(tuser.ChatID, 0, 64)
		tg.AddReceivers(chatID)
	}

	n := notify.NewWithServices(tg)
	return n.Send(m.ctx, subject, message)
}

func formatStintClosed(c model.StintClosed) string {
	return fmt.Sprintf("%s on %s\n%d laps in %s, %.2f fuel, tyres %s",
		c.DriverName, c.ServerName, c.Laps, helper.SecondsToStintTime(c.Time), c.Fuel, c.Compound)
}

package live

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/estianp/TinyPedalBroadcast/pkg/apps"
	"github.com/estianp/TinyPedalBroadcast/pkg/menus"
	"github.com/estianp/TinyPedalBroadcast/pkg/model"
	"github.com/estianp/TinyPedalBroadcast/pkg/pubsub"
	"github.com/estianp/TinyPedalBroadcast/pkg/settings"
	"github.com/estianp/TinyPedalBroadcast/pkg/spotter"
)

const spotterAppName = "Spotter"

// SpotterApp is the Telegram surface of one server's spotter: the
// relative table, the flag panel, stint histories and the notification
// settings hang off its keyboard.
type SpotterApp struct {
	bot             *tgbotapi.BotAPI
	appMenu         menus.ApplicationMenu
	menuKeyboard    tgbotapi.ReplyKeyboardMarkup
	accepters       []apps.Accepter
	serverName      string
	stateUpdateChan <-chan model.SpotterState
	receiving       bool
	mu              sync.Mutex
}

func NewSpotterApp(ctx context.Context, bot *tgbotapi.BotAPI, appMenu menus.ApplicationMenu, sp *spotter.Manager, sm *settings.Manager, serverName, serverID string) *SpotterApp {
	menuKeyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonRelative),
			tgbotapi.NewKeyboardButton(buttonFlags),
			tgbotapi.NewKeyboardButton(buttonStints),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(appMenu.ButtonBackTo()),
			tgbotapi.NewKeyboardButton(buttonSettings),
		),
	)

	sa := &SpotterApp{
		bot:             bot,
		appMenu:         appMenu,
		menuKeyboard:    menuKeyboard,
		serverName:      serverName,
		stateUpdateChan: pubsub.SpotterStatePubSub.Subscribe(pubsub.PubSubSpotterStatePreffix + serverID),
	}

	relativeApp := NewRelativeApp(bot, appMenu, sp, serverID)
	flagsApp := NewFlagsApp(bot, appMenu, sp, serverID)
	stintApp := NewStintApp(bot, appMenu, sp, serverID, serverName)
	settingsApp := NewSettingsApp(bot, appMenu, sm)
	sa.accepters = []apps.Accepter{relativeApp, flagsApp, stintApp, settingsApp}

	go sa.updater()

	return sa
}

func (sa *SpotterApp) updater() {
	for state := range sa.stateUpdateChan {
		sa.mu.Lock()
		sa.receiving = len(state.Rows) > 0
		if state.ServerName != "" {
			sa.serverName = state.ServerName
		}
		sa.mu.Unlock()
	}
}

func (sa *SpotterApp) Menu() tgbotapi.ReplyKeyboardMarkup {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	return sa.menuKeyboard
}

func (sa *SpotterApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	for _, accepter := range sa.accepters {
		accept, handler := accepter.AcceptCommand(command)
		if accept {
			return true, handler
		}
	}

	return false, nil
}

func (sa *SpotterApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	for _, accepter := range sa.accepters {
		accept, handler := accepter.AcceptCallback(query)
		if accept {
			return true, handler
		}
	}

	return false, nil
}

func (sa *SpotterApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	if button == sa.appMenu.Name {
		status := "⚠️ no data from the server"
		if sa.receiving {
			status = "✅ receiving data"
		}
		message := fmt.Sprintf("%s: %s\n%s\n", spotterAppName, sa.serverName, status)
		return true, func(ctx context.Context, chatId int64) error {
			msg := tgbotapi.NewMessage(chatId, message)
			msg.ReplyMarkup = sa.menuKeyboard
			_, err := sa.bot.Send(msg)
			return err
		}
	} else if button == sa.appMenu.ButtonBackTo() {
		return true, func(ctx context.Context, chatId int64) error {
			msg := tgbotapi.NewMessage(chatId, "OK")
			msg.ReplyMarkup = sa.appMenu.PrevMenu()
			_, err := sa.bot.Send(msg)
			return err
		}
	}
	for _, accepter := range sa.accepters {
		accept, handler := accepter.AcceptButton(button)
		if accept {
			return true, handler
		}
	}
	return false, nil
}

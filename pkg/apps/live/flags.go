package live

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/estianp/TinyPedalBroadcast/pkg/helper"
	"github.com/estianp/TinyPedalBroadcast/pkg/menus"
	"github.com/estianp/TinyPedalBroadcast/pkg/model"
	"github.com/estianp/TinyPedalBroadcast/pkg/pubsub"
	"github.com/estianp/TinyPedalBroadcast/pkg/raceflag"
	"github.com/estianp/TinyPedalBroadcast/pkg/spotter"
)

const subcommandShowFlags = "show_flags"

// FlagsApp renders the spectated vehicle's flag panel.
type FlagsApp struct {
	bot             *tgbotapi.BotAPI
	appMenu         menus.ApplicationMenu
	serverID        string
	spotter         *spotter.Manager
	state           model.SpotterState
	stateUpdateChan <-chan model.SpotterState
	mu              sync.Mutex
}

func NewFlagsApp(bot *tgbotapi.BotAPI, appMenu menus.ApplicationMenu, sp *spotter.Manager, serverID string) *FlagsApp {
	fa := &FlagsApp{
		bot:             bot,
		appMenu:         appMenu,
		serverID:        serverID,
		spotter:         sp,
		stateUpdateChan: pubsub.SpotterStatePubSub.Subscribe(pubsub.PubSubSpotterStatePreffix + serverID),
	}

	go fa.updater()

	return fa
}

func (fa *FlagsApp) updater() {
	for state := range fa.stateUpdateChan {
		fa.mu.Lock()
		fa.state = state
		fa.mu.Unlock()
	}
}

func (fa *FlagsApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	return false, nil
}

func (fa *FlagsApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	data := strings.Split(query.Data, ":")
	if data[0] == subcommandShowFlags && data[1] == fa.serverID {
		return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
			return fa.sendFlagData(query.Message.Chat.ID, &query.Message.MessageID)
		}
	}
	return false, nil
}

func (fa *FlagsApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	if button == buttonFlags {
		return true, func(ctx context.Context, chatId int64) error {
			err := fa.sendFlagData(chatId, nil)
			if err != nil {
				log.Printf("An error occured: %s", err.Error())
			}
			return nil
		}
	}
	return false, nil
}

func (fa *FlagsApp) sendFlagData(chatId int64, messageId *int) error {
	fa.mu.Lock()
	state := fa.state
	fa.mu.Unlock()
	focusSlot := fa.spotter.Focus()

	if focusSlot == spotter.NoFocus {
		msg := tgbotapi.NewMessage(chatId, "Spectating nobody, pick a car in the relative table first")
		_, err := fa.bot.Send(msg)
		return err
	}

	focusName := ""
	for _, row := range state.Rows {
		if row.SlotID == focusSlot {
			focusName = row.DriverName
		}
	}

	flags := state.Flags
	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendSeparator()
	t.AppendHeader(table.Row{"FLAG", "VALUE"})
	t.AppendRow([]interface{}{"Pit", formatPit(flags)})
	t.AppendRow([]interface{}{"Blue", formatBlue(flags.Blue)})
	t.AppendRow([]interface{}{"Traffic", formatTraffic(flags.Traffic)})
	t.AppendRow([]interface{}{"Start", formatGreen(flags.Green)})
	t.Render()

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardUpdate+" "+symbolUpdate, fmt.Sprintf("%s:%s", subcommandShowFlags, fa.serverID)),
		),
	)
	text := fmt.Sprintf("```\nFlags for %q on %q\n\n%s```", focusName, state.ServerName, b.String())
	var cfg tgbotapi.Chattable
	if messageId == nil {
		msg := tgbotapi.NewMessage(chatId, text)
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		msg.ReplyMarkup = keyboard
		cfg = msg
	} else {
		msg := tgbotapi.NewEditMessageText(chatId, *messageId, text)
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		msg.ReplyMarkup = &keyboard
		cfg = msg
	}
	_, err := fa.bot.Send(cfg)
	return err
}

func formatPit(flags model.FlagPanel) string {
	if flags.PitClosed {
		return "CLOSED"
	}
	switch {
	case flags.Pit >= raceflag.Inactive:
		return "-"
	case flags.Pit < 0:
		// the stop just finished, its duration is carried negated
		return fmt.Sprintf("done %s", helper.SecondsToStintTime(-flags.Pit))
	default:
		return fmt.Sprintf("in pits %s", helper.SecondsToStintTime(flags.Pit))
	}
}

func formatBlue(blue float64) string {
	if blue >= raceflag.Inactive {
		return "-"
	}
	return fmt.Sprintf("shown %.0fs", blue)
}

func formatTraffic(traffic float64) string {
	if traffic >= raceflag.Inactive {
		return "-"
	}
	return fmt.Sprintf("behind %.1fs", traffic)
}

func formatGreen(green int) string {
	switch {
	case green > 0:
		return fmt.Sprintf("%d lights", green)
	case green == 0:
		return "GREEN"
	default:
		return "-"
	}
}

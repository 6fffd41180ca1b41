package live

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/estianp/TinyPedalBroadcast/pkg/helper"
	"github.com/estianp/TinyPedalBroadcast/pkg/menus"
	"github.com/estianp/TinyPedalBroadcast/pkg/model"
	"github.com/estianp/TinyPedalBroadcast/pkg/pubsub"
	"github.com/estianp/TinyPedalBroadcast/pkg/spotter"
)

const (
	subcommandShowRelative = "show_relative"
	subcommandFocus        = "focus"
)

// RelativeApp renders the proximity table around the spectated vehicle
// and hosts the spectate-cycling buttons.
type RelativeApp struct {
	bot             *tgbotapi.BotAPI
	appMenu         menus.ApplicationMenu
	serverID        string
	spotter         *spotter.Manager
	state           model.SpotterState
	stateUpdateChan <-chan model.SpotterState
	mu              sync.Mutex
}

func NewRelativeApp(bot *tgbotapi.BotAPI, appMenu menus.ApplicationMenu, sp *spotter.Manager, serverID string) *RelativeApp {
	ra := &RelativeApp{
		bot:             bot,
		appMenu:         appMenu,
		serverID:        serverID,
		spotter:         sp,
		stateUpdateChan: pubsub.SpotterStatePubSub.Subscribe(pubsub.PubSubSpotterStatePreffix + serverID),
	}

	go ra.updater()

	return ra
}

func (ra *RelativeApp) updater() {
	for state := range ra.stateUpdateChan {
		ra.mu.Lock()
		ra.state = state
		ra.mu.Unlock()
	}
}

func (ra *RelativeApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	return false, nil
}

func (ra *RelativeApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	data := strings.Split(query.Data, ":")
	if data[0] == subcommandShowRelative && data[1] == ra.serverID {
		return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
			return ra.sendRelativeData(query.Message.Chat.ID, &query.Message.MessageID, data[2])
		}
	}
	if data[0] == subcommandFocus && data[1] == ra.serverID {
		return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
			switch data[2] {
			case "next":
				ra.spotter.FocusNext()
			case "prev":
				ra.spotter.FocusPrevious()
			}
			return ra.sendRelativeData(query.Message.Chat.ID, &query.Message.MessageID, data[3])
		}
	}
	return false, nil
}

func (ra *RelativeApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	if button == buttonRelative {
		return true, func(ctx context.Context, chatId int64) error {
			err := ra.sendRelativeData(chatId, nil, sortByGap)
			if err != nil {
				log.Printf("An error occured: %s", err.Error())
			}
			return nil
		}
	}
	return false, nil
}

func (ra *RelativeApp) sendRelativeData(chatId int64, messageId *int, sortMode string) error {
	ra.mu.Lock()
	state := ra.state
	ra.mu.Unlock()
	focusSlot := ra.spotter.Focus()

	if len(state.Rows) == 0 {
		msg := tgbotapi.NewMessage(chatId, "No cars in the session")
		_, err := ra.bot.Send(msg)
		return err
	}

	rows := make([]model.SpotterRow, len(state.Rows))
	copy(rows, state.Rows)
	if sortMode == sortByPlace {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Place < rows[j].Place
		})
	} else {
		// ahead on top, like a pit wall relative screen
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].RelativeGap > rows[j].RelativeGap
		})
	}

	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendSeparator()
	t.AppendHeader(table.Row{"P", tableDriver, "GAP", "CP", "S"})
	for _, row := range rows {
		name := helper.GetDriverCodeName(row.DriverName)
		if row.SlotID == focusSlot {
			name = "▶" + name
		}
		gap := helper.SecondsToGap(row.RelativeGap)
		if focusSlot == spotter.NoFocus {
			gap = "-"
		} else if row.SlotID == focusSlot {
			gap = ""
		}
		t.AppendRow([]interface{}{
			row.Place,
			name,
			gap,
			row.ClassPosition,
			statusTags(row),
		})
	}
	t.Render()

	focusName := "nobody"
	for _, row := range rows {
		if row.SlotID == focusSlot {
			focusName = row.DriverName
		}
	}

	keyboard := getRelativeInlineKeyboard(ra.serverID, sortMode)
	text := fmt.Sprintf("```\nSpectating %q on %q\n\n%s```", focusName, state.ServerName, b.String())
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
	_, err := ra.bot.Send(cfg)
	return err
}

func statusTags(row model.SpotterRow) string {
	tags := ""
	if row.InPits {
		tags += tagPit
	}
	if row.IsYellow {
		tags += tagYellow
	}
	if row.IsBlue {
		tags += tagBlue
	}
	switch {
	case row.InBattle:
		tags += tagBattle
	case row.IsClose:
		tags += tagClose
	}
	if row.IsLapping {
		tags += tagLapping
	}
	return tags
}

func getRelativeInlineKeyboard(serverID, sortMode string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(symbolPrevious, fmt.Sprintf("%s:%s:prev:%s", subcommandFocus, serverID, sortMode)),
			tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardUpdate+" "+symbolUpdate, fmt.Sprintf("%s:%s:%s", subcommandShowRelative, serverID, sortMode)),
			tgbotapi.NewInlineKeyboardButtonData(symbolNext, fmt.Sprintf("%s:%s:next:%s", subcommandFocus, serverID, sortMode)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardRelative, fmt.Sprintf("%s:%s:%s", subcommandShowRelative, serverID, sortByGap)),
			tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardStandings, fmt.Sprintf("%s:%s:%s", subcommandShowRelative, serverID, sortByPlace)),
		),
	)
}

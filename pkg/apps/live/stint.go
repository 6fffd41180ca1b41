package live

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/estianp/TinyPedalBroadcast/pkg/helper"
	"github.com/estianp/TinyPedalBroadcast/pkg/menus"
	"github.com/estianp/TinyPedalBroadcast/pkg/model"
	"github.com/estianp/TinyPedalBroadcast/pkg/pubsub"
	"github.com/estianp/TinyPedalBroadcast/pkg/spotter"
	"github.com/estianp/TinyPedalBroadcast/pkg/stint"
)

const (
	subcommandShowStint = "show_stint"

	stintViewStints = "stints"
	stintViewLaps   = "laps"
)

var commandStintSlot = regexp.MustCompile(`^\/stint_(\d+)$`)

// StintApp lists the drivers in the session and renders per-driver stint
// history and lap consumption tables.
type StintApp struct {
	bot             *tgbotapi.BotAPI
	appMenu         menus.ApplicationMenu
	serverID        string
	serverName      string
	spotter         *spotter.Manager
	state           model.SpotterState
	stateUpdateChan <-chan model.SpotterState
	mu              sync.Mutex
}

func NewStintApp(bot *tgbotapi.BotAPI, appMenu menus.ApplicationMenu, sp *spotter.Manager, serverID, serverName string) *StintApp {
	sa := &StintApp{
		bot:             bot,
		appMenu:         appMenu,
		serverID:        serverID,
		serverName:      serverName,
		spotter:         sp,
		stateUpdateChan: pubsub.SpotterStatePubSub.Subscribe(pubsub.PubSubSpotterStatePreffix + serverID),
	}

	go sa.updater()

	return sa
}

func (sa *StintApp) updater() {
	for state := range sa.stateUpdateChan {
		sa.mu.Lock()
		sa.state = state
		sa.mu.Unlock()
	}
}

func (sa *StintApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	if commandStintSlot.MatchString(command) {
		slotID, _ := strconv.Atoi(commandStintSlot.FindStringSubmatch(command)[1])
		return true, func(ctx context.Context, chatId int64) error {
			return sa.sendStintData(chatId, nil, slotID, stintViewStints)
		}
	}
	return false, nil
}

func (sa *StintApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	data := strings.Split(query.Data, ":")
	if data[0] == subcommandShowStint && data[1] == sa.serverID {
		return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
			slotID, err := strconv.Atoi(data[2])
			if err != nil {
				return err
			}
			return sa.sendStintData(query.Message.Chat.ID, &query.Message.MessageID, slotID, data[3])
		}
	}
	return false, nil
}

func (sa *StintApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	if button == buttonStints {
		return true, func(ctx context.Context, chatId int64) error {
			err := sa.sendDriverList(chatId)
			if err != nil {
				log.Printf("An error occured: %s", err.Error())
			}
			return nil
		}
	}
	return false, nil
}

func (sa *StintApp) sendDriverList(chatId int64) error {
	sa.mu.Lock()
	state := sa.state
	sa.mu.Unlock()

	if len(state.Rows) == 0 {
		msg := tgbotapi.NewMessage(chatId, "No cars in the session")
		_, err := sa.bot.Send(msg)
		return err
	}

	rows := make([]model.SpotterRow, len(state.Rows))
	copy(rows, state.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Place < rows[j].Place
	})

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf(" ▸ %s ➡ /stint_%d", row.DriverName, row.SlotID))
	}
	message := fmt.Sprintf("Pick a driver on %s:\n\n%s", sa.serverName, strings.Join(lines, "\n"))
	msg := tgbotapi.NewMessage(chatId, message)
	_, err := sa.bot.Send(msg)
	return err
}

func (sa *StintApp) sendStintData(chatId int64, messageId *int, slotID int, view string) error {
	sa.mu.Lock()
	state := sa.state
	sa.mu.Unlock()

	driverName := fmt.Sprintf("slot %d", slotID)
	for _, row := range state.Rows {
		if row.SlotID == slotID {
			driverName = row.DriverName
		}
	}

	var b bytes.Buffer
	switch view {
	case stintViewLaps:
		laps, ok := sa.spotter.LapsFor(slotID)
		if !ok {
			return sa.sendDriverGone(chatId)
		}
		renderLaps(&b, laps)
	default:
		current, history, ok := sa.spotter.StintFor(slotID)
		if !ok {
			return sa.sendDriverGone(chatId)
		}
		renderStints(&b, current, history)
	}

	keyboard := getStintInlineKeyboard(sa.serverID, slotID, view)
	text := fmt.Sprintf("```\nStints for %q on %q\n\n%s```", driverName, sa.serverName, b.String())
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
	_, err := sa.bot.Send(cfg)
	return err
}

func (sa *StintApp) sendDriverGone(chatId int64) error {
	msg := tgbotapi.NewMessage(chatId, "That driver is no longer in the session")
	_, err := sa.bot.Send(msg)
	return err
}

func renderStints(b *bytes.Buffer, current stint.Record, history []stint.Record) {
	t := table.NewWriter()
	t.SetOutputMirror(b)
	t.SetStyle(table.StyleRounded)
	t.AppendSeparator()
	t.AppendHeader(table.Row{"", "LAPS", "TIME", "FUEL", "TYRE", "WEAR", "CONS"})
	t.AppendRow(stintRow("now", current))
	for i, record := range history {
		t.AppendRow(stintRow(fmt.Sprintf("-%d", i+1), record))
	}
	t.Render()
}

func stintRow(label string, r stint.Record) table.Row {
	return table.Row{
		label,
		r.Laps,
		helper.SecondsToStintTime(r.Time),
		fmt.Sprintf("%.1f", r.Fuel),
		r.Compound,
		fmt.Sprintf("%.0f%%", r.Wear),
		fmt.Sprintf("%.1f%%", r.Consistency),
	}
}

func renderLaps(b *bytes.Buffer, laps []stint.LapRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(b)
	t.SetStyle(table.StyleRounded)
	t.AppendSeparator()
	t.AppendHeader(table.Row{"LAP", "TIME", "FUEL", "NRG", "WEAR", "V"})
	for _, lap := range laps {
		valid := ""
		if lap.Valid {
			valid = "✓"
		}
		t.AppendRow([]interface{}{
			lap.LapNumber,
			helper.SecondsToMinutes(lap.LapTime),
			fmt.Sprintf("%.2f", lap.FuelUsed),
			fmt.Sprintf("%.2f", lap.EnergyUsed),
			fmt.Sprintf("%.1f%%", lap.WearAvg),
			valid,
		})
	}
	t.Render()
}

func getStintInlineKeyboard(serverID string, slotID int, view string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardStints+" "+symbolStint, fmt.Sprintf("%s:%s:%d:%s", subcommandShowStint, serverID, slotID, stintViewStints)),
			tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardLaps+" "+symbolLaps, fmt.Sprintf("%s:%s:%d:%s", subcommandShowStint, serverID, slotID, stintViewLaps)),
			tgbotapi.NewInlineKeyboardButtonData(symbolUpdate, fmt.Sprintf("%s:%s:%d:%s", subcommandShowStint, serverID, slotID, view)),
		),
	)
}

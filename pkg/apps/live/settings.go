package live

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/estianp/TinyPedalBroadcast/pkg/menus"
	"github.com/estianp/TinyPedalBroadcast/pkg/settings"
)

type ContextUser string
type ContextChatID string

const (
	UserContextKey ContextUser   = "user"
	ChatContextKey ContextChatID = "chat"

	inlineKeyboardSessionStart = "Session start"
	inlineKeyboardStintClose   = "Stint close"

	subcommandNotifications = "notifications"
)

// SettingsApp toggles per-user notification subscriptions.
type SettingsApp struct {
	bot     *tgbotapi.BotAPI
	appMenu menus.ApplicationMenu
	sm      *settings.Manager
	mu      sync.Mutex
}

func NewSettingsApp(bot *tgbotapi.BotAPI, appMenu menus.ApplicationMenu, sm *settings.Manager) *SettingsApp {
	return &SettingsApp{
		bot:     bot,
		sm:      sm,
		appMenu: appMenu,
	}
}

func (sa *SettingsApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	return false, nil
}

func (sa *SettingsApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	data := strings.Split(query.Data, ":")
	if data[0] == subcommandNotifications {
		sa.mu.Lock()
		defer sa.mu.Unlock()
		return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
			userID := data[1]
			event := data[2]

			chatCtxValue := ctx.Value(ChatContextKey)
			if chatCtxValue == nil {
				msg := tgbotapi.NewMessage(query.Message.Chat.ID, "Could not read the chat information")
				msg.ReplyMarkup = sa.appMenu.PrevMenu()
				_, err := sa.bot.Send(msg)
				return err
			}
			chat := chatCtxValue.(*tgbotapi.Chat)
			chatID := fmt.Sprintf("%d", chat.ID)

			err := sa.sm.ToggleSubscription(userID, chatID, event)
			if err != nil {
				msg := tgbotapi.NewMessage(query.Message.Chat.ID, "Could not change the subscription")
				msg.ReplyMarkup = sa.appMenu.PrevMenu()
				_, err := sa.bot.Send(msg)
				return err
			}
			return sa.renderSubscriptions(&query.Message.MessageID)(ctx, query.Message.Chat.ID)
		}
	}
	return false, nil
}

func (sa *SettingsApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	if button == buttonSettings {
		return true, sa.renderSubscriptions(nil)
	}
	return false, nil
}

func (sa *SettingsApp) renderSubscriptions(messageID *int) func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		userCtxValue := ctx.Value(UserContextKey)
		if userCtxValue == nil {
			msg := tgbotapi.NewMessage(chatId, "Could not read the user")
			msg.ReplyMarkup = sa.appMenu.PrevMenu()
			_, err := sa.bot.Send(msg)
			return err
		}
		user := userCtxValue.(*tgbotapi.User)
		userID := fmt.Sprintf("%d", user.ID)
		subs, err := sa.sm.ListSubscriptions(userID)
		if err != nil {
			log.Println(err)
			msg := tgbotapi.NewMessage(chatId, "Could not read the subscriptions for the user")
			msg.ReplyMarkup = sa.appMenu.PrevMenu()
			_, err := sa.bot.Send(msg)
			return err
		}
		keyboard := getSettingsInlineKeyboard(userID, subs)
		var cfg tgbotapi.Chattable
		if messageID == nil {
			msg := tgbotapi.NewMessage(chatId, subs.String())
			msg.ReplyMarkup = keyboard
			cfg = msg
		} else {
			msg := tgbotapi.NewEditMessageText(chatId, *messageID, subs.String())
			msg.ReplyMarkup = &keyboard
			cfg = msg
		}
		_, err = sa.bot.Send(cfg)
		return err
	}
}

func getSettingsInlineKeyboard(userID string, subs settings.Subscriptions) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardSessionStart+" "+toggleSymbol(subs[settings.SessionStart]), fmt.Sprintf("%s:%s:%s", subcommandNotifications, userID, settings.SessionStart)),
			tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardStintClose+" "+toggleSymbol(subs[settings.StintClose]), fmt.Sprintf("%s:%s:%s", subcommandNotifications, userID, settings.StintClose)),
		),
	)
}

func toggleSymbol(enabled bool) string {
	if enabled {
		return "🔔"
	}
	return "🔕"
}

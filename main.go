package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/estianp/TinyPedalBroadcast/pkg/apps/live"
	"github.com/estianp/TinyPedalBroadcast/pkg/apps/mainapp"
	"github.com/estianp/TinyPedalBroadcast/pkg/compound"
	"github.com/estianp/TinyPedalBroadcast/pkg/helper"
	"github.com/estianp/TinyPedalBroadcast/pkg/notification"
	"github.com/estianp/TinyPedalBroadcast/pkg/settings"
	"github.com/estianp/TinyPedalBroadcast/pkg/spotter"
	"github.com/estianp/TinyPedalBroadcast/pkg/telemetry"
)

const tickInterval = 1 * time.Second

var bot *tgbotapi.BotAPI

func main() {
	var err error
	// get token from env
	token := os.Getenv("TELEGRAM_TOKEN")
	bot, err = tgbotapi.NewBotAPI(token)
	if err != nil {
		// Abort if something is wrong
		log.Panic(err)
	}

	// Set this to true to log all interactions with telegram servers
	bot.Debug = false

	serverURL := os.Getenv("SERVER_URL")
	if serverURL == "" {
		log.Panic("SERVER_URL is required")
	}
	serverName := os.Getenv("SERVER_NAME")
	if serverName == "" {
		serverName = serverURL
	}
	serverID := helper.ToID(serverName)

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)

	sm, err := settings.NewManager(settings.DbName)
	if err != nil {
		log.Panic(err)
	}
	defer sm.Close()

	cfg, err := sm.Thresholds()
	if err != nil {
		log.Printf("Using stock thresholds: %s", err.Error())
	}
	symbols, err := sm.CompoundSymbols()
	if err != nil {
		log.Printf("Using stock compound symbols: %s", err.Error())
	}
	compounds := compound.NewLookup(symbols)

	feed := telemetry.NewClient(serverName, serverID, serverURL)
	go feed.Run(ctx)

	exitChan := make(chan bool)
	sp := spotter.NewManager(ctx, feed, cfg, compounds, serverName, serverID)
	sp.Sync(time.NewTicker(tickInterval), exitChan)

	nm := notification.NewManager(ctx, bot, sm, serverID)
	go nm.Start(exitChan)

	app, err := mainapp.NewMainApp(ctx, bot, sp, sm, serverName, serverID)
	if err != nil {
		log.Panic(err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	// `updates` is a golang channel which receives telegram updates
	updates := bot.GetUpdatesChan(u)

	// Pass cancellable context to goroutine
	go receiveUpdates(ctx, updates, app)

	// Tell the user the bot is online
	log.Println("Start listening for updates. Press Ctrl-C to stop it")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	// lock the main thread until we receive a signal
	<-sigs

	close(exitChan)
	cancel()
}

func receiveUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel, app *mainapp.MainApp) {
	for {
		select {
		// stop looping if ctx is cancelled
		case <-ctx.Done():
			return
		// receive update from channel and then handle it
		case update := <-updates:
			handleUpdate(ctx, update, app)
		}
	}
}

func handleUpdate(ctx context.Context, update tgbotapi.Update, app *mainapp.MainApp) {
	switch {
	// Handle messages
	case update.Message != nil:
		handleMessage(ctx, update.Message, app)
	// Handle button clicks
	case update.CallbackQuery != nil:
		handleCallbackQuery(ctx, update.CallbackQuery, app)
	}
}

func handleMessage(ctx context.Context, message *tgbotapi.Message, app *mainapp.MainApp) {
	user := message.From
	text := message.Text

	if user == nil {
		return
	}

	// Print to console
	log.Printf("%s wrote %s", user.FirstName, text)

	// the settings app reads the user and chat back from the context
	ctx = context.WithValue(ctx, live.UserContextKey, user)
	ctx = context.WithValue(ctx, live.ChatContextKey, message.Chat)

	var err error
	if message.IsCommand() {
		accept, handler := app.AcceptCommand(text)
		if accept {
			err = handler(ctx, message.Chat.ID)
		}
	} else {
		accept, handler := app.AcceptButton(text)
		if accept {
			err = handler(ctx, message.Chat.ID)
		}
	}

	if err != nil {
		log.Printf("An error occured: %s", err.Error())
	}
}

func handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery, app *mainapp.MainApp) {
	if query.From != nil {
		ctx = context.WithValue(ctx, live.UserContextKey, query.From)
	}
	if query.Message != nil {
		ctx = context.WithValue(ctx, live.ChatContextKey, query.Message.Chat)
	}

	accept, handler := app.AcceptCallback(query)
	if accept {
		err := handler(ctx, query)
		if err != nil {
			log.Printf("An error occured: %s", err.Error())
		}
	}
}

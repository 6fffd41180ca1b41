package settings

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	DbName = "./spotter-bot.db"

	SessionStart = "sessionstart"
	StintClose   = "stintclose"
)

type TelegramUser struct {
	ID     string
	Name   string
	ChatID string
}

type Subscriptions map[string]bool

func AllDisabled() Subscriptions {
	return Subscriptions{
		SessionStart: false,
		StintClose:   false,
	}
}

func (s Subscriptions) EnabledInt(event string) int {
	if s[event] {
		return 1
	}
	return 0
}

func (s Subscriptions) String() string {
	status := []string{}
	status = append(status, fmt.Sprintf("%s Session start notifications", symbolStatus(s[SessionStart])))
	status = append(status, fmt.Sprintf("%s Stint close notifications", symbolStatus(s[StintClose])))
	return strings.Join(status, "\n")
}

func symbolStatus(enabled bool) string {
	if enabled {
		return "🔔"
	}
	return "🔕"
}

type Manager struct {
	db *sql.DB
	mu sync.Mutex
}

func NewManager(dbName string) (*Manager, error) {
	db, err := sql.Open("sqlite3", dbName)
	if err != nil {
		log.Printf("error opening database: %s\n", err)
		return nil, errors.Wrap(err, "open settings database")
	}

	for _, stmt := range buildCreateTables() {
		_, err = db.Exec(stmt)
		if err != nil {
			log.Printf("error init database: %s\n", err)
			return nil, errors.Wrap(err, "init settings database")
		}
	}

	return &Manager{
		db: db,
		mu: sync.Mutex{},
	}, nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.db.Close()
}

// Thresholds returns the stock tuning overlaid with every stored override.
func (m *Manager) Thresholds() (Thresholds, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stmt, read := buildSelectThresholdsCommand()
	rows, err := m.db.Query(stmt)
	if err != nil {
		return DefaultThresholds(), errors.Wrap(err, "select thresholds")
	}
	return read(rows)
}

func (m *Manager) SetThreshold(name string, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.db.Exec(buildUpdateThresholdCommand(name, value))
	if err != nil {
		log.Printf("error updating database: %s\n", err)
		return err
	}
	return nil
}

// CompoundSymbols returns the stored "class - compound" to symbol overrides.
func (m *Manager) CompoundSymbols() (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stmt, read := buildSelectCompoundsCommand()
	rows, err := m.db.Query(stmt)
	if err != nil {
		return map[string]string{}, errors.Wrap(err, "select compounds")
	}
	return read(rows)
}

func (m *Manager) SetCompoundSymbol(name, symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.db.Exec(buildUpdateCompoundCommand(name, symbol))
	if err != nil {
		log.Printf("error updating database: %s\n", err)
		return err
	}
	return nil
}

func (m *Manager) ToggleSubscription(userID, chatID, event string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.listSubscriptions(userID)
	if err != nil {
		return err
	}

	s[event] = !s[event]
	_, err = m.db.Exec(buildUpdateSubscriptionCommand(userID, chatID, s))
	if err != nil {
		log.Printf("error updating database: %s\n", err)
		return err
	}
	return nil
}

func (m *Manager) ListSubscriptions(userID string) (Subscriptions, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.listSubscriptions(userID)
}

func (m *Manager) ListUsersForEvent(event string) ([]TelegramUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := []TelegramUser{}
	stmt, read := buildSelectSubscribersCommand(event)
	rows, err := m.db.Query(stmt)
	if err != nil {
		return users, err
	}
	return read(rows)
}

func (m *Manager) listSubscriptions(userID string) (Subscriptions, error) {
	stmt, read := buildSelectSubscriptionCommand(userID)
	rows, err := m.db.Query(stmt)
	if err != nil {
		return AllDisabled(), err
	}
	return read(rows)
}

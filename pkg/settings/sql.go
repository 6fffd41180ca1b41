package settings

import (
	"database/sql"
	"fmt"
)

func buildCreateTables() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS thresholds (
		name TEXT PRIMARY KEY,
		value REAL NOT NULL);`,
		`CREATE TABLE IF NOT EXISTS compounds (
		name TEXT PRIMARY KEY,
		symbol TEXT NOT NULL);`,
		`CREATE TABLE IF NOT EXISTS subscriptions (
		userid TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		chatid TEXT NOT NULL,
		sessionstart INTEGER,
		stintclose INTEGER);`,
	}
}

func buildSelectThresholdsCommand() (string, func(*sql.Rows) (Thresholds, error)) {
	return `SELECT name, value FROM thresholds`, processSelectThresholdsRows
}

func processSelectThresholdsRows(rows *sql.Rows) (Thresholds, error) {
	defer rows.Close()

	t := DefaultThresholds()
	for rows.Next() {
		var name string
		var value float64
		err := rows.Scan(&name, &value)
		if err != nil {
			return t, err
		}
		t.apply(name, value)
	}
	return t, rows.Err()
}

func buildUpdateThresholdCommand(name string, value float64) string {
	return fmt.Sprintf(`INSERT OR REPLACE INTO thresholds (name, value) VALUES ('%s', %f)`, name, value)
}

func buildSelectCompoundsCommand() (string, func(*sql.Rows) (map[string]string, error)) {
	return `SELECT name, symbol FROM compounds`, processSelectCompoundsRows
}

func processSelectCompoundsRows(rows *sql.Rows) (map[string]string, error) {
	defer rows.Close()

	symbols := make(map[string]string)
	for rows.Next() {
		var name string
		var symbol string
		err := rows.Scan(&name, &symbol)
		if err != nil {
			return symbols, err
		}
		symbols[name] = symbol
	}
	return symbols, rows.Err()
}

func buildUpdateCompoundCommand(name, symbol string) string {
	return fmt.Sprintf(`INSERT OR REPLACE INTO compounds (name, symbol) VALUES ('%s', '%s')`, name, symbol)
}

func buildSelectSubscribersCommand(event string) (string, func(*sql.Rows) ([]TelegramUser, error)) {
	fields := "userid, name, chatid"
	return fmt.Sprintf(`SELECT %s FROM subscriptions WHERE %s = 1`, fields, event), processSelectSubscribersRows
}

func processSelectSubscribersRows(rows *sql.Rows) ([]TelegramUser, error) {
	defer rows.Close()

	users := make([]TelegramUser, 0)
	for rows.Next() {
		var id string
		var name string
		var chatid string
		err := rows.Scan(&id, &name, &chatid)
		if err != nil {
			return users, err
		}
		users = append(users, TelegramUser{
			ID:     id,
			Name:   name,
			ChatID: chatid,
		})
	}
	return users, rows.Err()
}

func buildSelectSubscriptionCommand(userID string) (string, func(*sql.Rows) (Subscriptions, error)) {
	fields := "sessionstart, stintclose"
	return fmt.Sprintf(`SELECT %s FROM subscriptions WHERE userid = '%s'`, fields, userID), processSelectSubscriptionRows
}

func processSelectSubscriptionRows(rows *sql.Rows) (Subscriptions, error) {
	defer rows.Close()

	s := AllDisabled()
	// only can be one row
	if rows.Next() {
		var sessionstart int
		var stintclose int
		err := rows.Scan(&sessionstart, &stintclose)
		if err != nil {
			return s, err
		}
		s[SessionStart] = sessionstart == 1
		s[StintClose] = stintclose == 1
		return s, nil
	}
	return s, rows.Err()
}

func buildUpdateSubscriptionCommand(userID, chatID string, s Subscriptions) string {
	fields := "userid, name, chatid, sessionstart, stintclose"
	values := fmt.Sprintf(`'%s', '%s', '%s', %d, %d`,
		userID, userID, chatID, s.EnabledInt(SessionStart), s.EnabledInt(StintClose))
	return fmt.Sprintf(`INSERT OR REPLACE INTO subscriptions (%s) VALUES (%s)`, fields, values)
}

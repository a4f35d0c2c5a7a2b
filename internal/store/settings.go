package store

import (
	"fmt"
	"strconv"
	"time"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// Preferences is the typed view of the settings table.
type Preferences struct {
	IdleTimeout time.Duration
	IdleAction  string // "pause" or "stop"
	DailyGoal   int64  // seconds
	WeekStart   string // "monday" or "sunday"
	TopN        int
}

func DefaultPreferences() Preferences {
	return Preferences{
		IdleTimeout: 5 * time.Minute,
		IdleAction:  "pause",
		DailyGoal:   8 * 3600,
		WeekStart:   "monday",
		TopN:        10,
	}
}

// Preferences reads the settings table. Missing or malformed values fall
// back to their defaults.
func (s *Store) Preferences() (Preferences, error) {
	p := DefaultPreferences()
	settings, err := s.GetAllSettings()
	if err != nil {
		return p, err
	}
	for _, kv := range settings {
		switch kv.Key {
		case "idle_timeout":
			if n, err := strconv.Atoi(kv.Value); err == nil && n >= 0 {
				p.IdleTimeout = time.Duration(n) * time.Second
			}
		case "idle_action":
			if kv.Value == "pause" || kv.Value == "stop" {
				p.IdleAction = kv.Value
			}
		case "daily_goal":
			if n, err := strconv.ParseInt(kv.Value, 10, 64); err == nil && n >= 0 {
				p.DailyGoal = n
			}
		case "week_start":
			if kv.Value == "monday" || kv.Value == "sunday" {
				p.WeekStart = kv.Value
			}
		case "top_n":
			if n, err := strconv.Atoi(kv.Value); err == nil && n >= 0 {
				p.TopN = n
			}
		}
	}
	return p, nil
}

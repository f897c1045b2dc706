// Package db persists table/seat/hand state to sqlite so a restarted server
// can resume in-flight tables. Grounded on the reference's
// pkg/server/internal/db/db.go: raw SQL DDL in createTables, a thin *sql.DB
// wrapper, and explicit transactions for multi-statement writes rather than
// an ORM.
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// GameState is the persisted snapshot of one table's session
// (SPEC_FULL.md §6.4 `games` table).
type GameState struct {
	ID             string
	HostID         string
	MinPlayers     int
	MaxPlayers     int
	SmallBlind     int64
	BigBlind       int64
	MinBuyIn       int64
	MaxBuyIn       int64
	StartingChips  int64
	Status         string
	Phase          string
	DealerSeat     int
	CurrentSeat    int
	CurrentBet     int64
	HandCount      int64
	CommunityCards string // JSON array of canonical card strings
	DeckState      string // JSON DeckState
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PlayerGameState is the persisted per-seat row
// (SPEC_FULL.md §6.4 `player_games` table).
type PlayerGameState struct {
	GameID           string
	PlayerID         string
	SeatIndex        int
	Stack            int64
	StartingStack    int64
	CurrentBet       int64
	TotalBetThisHand int64
	HoleCards        string // JSON array
	HasFolded        bool
	IsAllIn          bool
	CashedOut        bool
	ReadyForNextHand bool
	FinalStack       int64
}

// GameActionRow is one append-only action record
// (SPEC_FULL.md §6.4 `game_actions` table).
type GameActionRow struct {
	GameID     string
	Sequence   int64
	SeatIndex  int
	Action     string
	Amount     int64
	Phase      string
	HandNumber int64
	CreatedAt  time.Time
}

// HandHistoryRow is one completed hand's summary
// (SPEC_FULL.md §6.4 `hand_histories` table).
type HandHistoryRow struct {
	GameID         string
	HandNumber     int64
	DealerSeat     int
	CommunityCards string // JSON
	PotTotal       int64
	WinnerInfo     string // JSON
	CreatedAt      time.Time
}

// DB wraps a sqlite connection with the schema this engine needs.
type DB struct {
	*sql.DB
}

// Open creates (or reuses) the sqlite file at dbPath and ensures the schema
// exists.
func Open(dbPath string) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := createSchema(sqlDB); err != nil {
		return nil, err
	}
	return &DB{sqlDB}, nil
}

func createSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			balance INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id TEXT NOT NULL,
			amount INTEGER NOT NULL,
			type TEXT NOT NULL,
			description TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (player_id) REFERENCES players(id)
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			host_id TEXT NOT NULL,
			min_players INTEGER NOT NULL,
			max_players INTEGER NOT NULL,
			small_blind INTEGER NOT NULL,
			big_blind INTEGER NOT NULL,
			min_buy_in INTEGER NOT NULL,
			max_buy_in INTEGER NOT NULL,
			starting_chips INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'WAITING',
			phase TEXT NOT NULL DEFAULT 'WAITING_FOR_PLAYERS',
			dealer_seat INTEGER DEFAULT -1,
			current_seat INTEGER DEFAULT -1,
			current_bet INTEGER DEFAULT 0,
			hand_count INTEGER DEFAULT 0,
			community_cards TEXT DEFAULT '[]',
			deck_state TEXT DEFAULT '{}',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS player_games (
			game_id TEXT NOT NULL,
			player_id TEXT NOT NULL,
			seat_index INTEGER NOT NULL,
			stack INTEGER NOT NULL DEFAULT 0,
			starting_stack INTEGER NOT NULL DEFAULT 0,
			current_bet INTEGER NOT NULL DEFAULT 0,
			total_bet_this_hand INTEGER NOT NULL DEFAULT 0,
			hole_cards TEXT DEFAULT '[]',
			has_folded BOOLEAN NOT NULL DEFAULT FALSE,
			is_all_in BOOLEAN NOT NULL DEFAULT FALSE,
			cashed_out BOOLEAN NOT NULL DEFAULT FALSE,
			ready_for_next_hand BOOLEAN NOT NULL DEFAULT FALSE,
			final_stack INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (game_id, player_id),
			FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS game_actions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			seat_index INTEGER NOT NULL,
			action TEXT NOT NULL,
			amount INTEGER NOT NULL DEFAULT 0,
			phase TEXT NOT NULL,
			hand_number INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS hand_histories (
			game_id TEXT NOT NULL,
			hand_number INTEGER NOT NULL,
			dealer_seat INTEGER NOT NULL,
			community_cards TEXT DEFAULT '[]',
			pot_total INTEGER NOT NULL DEFAULT 0,
			winner_info TEXT DEFAULT '{}',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (game_id, hand_number),
			FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying connection.
func (d *DB) Close() error { return d.DB.Close() }

// GetPlayerBalance returns a player's persisted bankroll balance.
func (d *DB) GetPlayerBalance(playerID string) (int64, error) {
	var balance int64
	err := d.QueryRow("SELECT balance FROM players WHERE id = ?", playerID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get player balance: %w", err)
	}
	return balance, nil
}

// UpdatePlayerBalance adjusts a player's bankroll and records the
// transaction atomically.
func (d *DB) UpdatePlayerBalance(playerID string, amount int64, txType, description string) error {
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO players (id, balance) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET balance = balance + ?
	`, playerID, amount, amount)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`
		INSERT INTO transactions (player_id, amount, type, description)
		VALUES (?, ?, ?, ?)
	`, playerID, amount, txType, description)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// SaveSnapshot atomically persists a game and its seats in one transaction,
// grounded on the reference's SaveSnapshot (table+player consistency).
func (d *DB) SaveSnapshot(game *GameState, seats []*PlayerGameState) error {
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveGameTx(tx, game); err != nil {
		return err
	}
	for _, s := range seats {
		if err := savePlayerGameTx(tx, s); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func saveGameTx(tx *sql.Tx, g *GameState) error {
	_, err := tx.Exec(`
		INSERT OR REPLACE INTO games (
			id, host_id, min_players, max_players, small_blind, big_blind,
			min_buy_in, max_buy_in, starting_chips, status, phase, dealer_seat,
			current_seat, current_bet, hand_count, community_cards, deck_state, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		g.ID, g.HostID, g.MinPlayers, g.MaxPlayers, g.SmallBlind, g.BigBlind,
		g.MinBuyIn, g.MaxBuyIn, g.StartingChips, g.Status, g.Phase, g.DealerSeat,
		g.CurrentSeat, g.CurrentBet, g.HandCount, g.CommunityCards, g.DeckState, time.Now(),
	)
	return err
}

func savePlayerGameTx(tx *sql.Tx, p *PlayerGameState) error {
	_, err := tx.Exec(`
		INSERT OR REPLACE INTO player_games (
			game_id, player_id, seat_index, stack, starting_stack, current_bet,
			total_bet_this_hand, hole_cards, has_folded, is_all_in, cashed_out,
			ready_for_next_hand, final_stack
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.GameID, p.PlayerID, p.SeatIndex, p.Stack, p.StartingStack, p.CurrentBet,
		p.TotalBetThisHand, p.HoleCards, p.HasFolded, p.IsAllIn, p.CashedOut,
		p.ReadyForNextHand, p.FinalStack,
	)
	return err
}

// LoadGame loads one game's row.
func (d *DB) LoadGame(gameID string) (*GameState, error) {
	var g GameState
	err := d.QueryRow(`
		SELECT id, host_id, min_players, max_players, small_blind, big_blind,
		       min_buy_in, max_buy_in, starting_chips, status, phase, dealer_seat,
		       current_seat, current_bet, hand_count, community_cards, deck_state,
		       created_at, updated_at
		FROM games WHERE id = ?
	`, gameID).Scan(
		&g.ID, &g.HostID, &g.MinPlayers, &g.MaxPlayers, &g.SmallBlind, &g.BigBlind,
		&g.MinBuyIn, &g.MaxBuyIn, &g.StartingChips, &g.Status, &g.Phase, &g.DealerSeat,
		&g.CurrentSeat, &g.CurrentBet, &g.HandCount, &g.CommunityCards, &g.DeckState,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("game %s not found", gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}
	return &g, nil
}

// LoadPlayerGames loads every seat row for a game.
func (d *DB) LoadPlayerGames(gameID string) ([]*PlayerGameState, error) {
	rows, err := d.Query(`
		SELECT game_id, player_id, seat_index, stack, starting_stack, current_bet,
		       total_bet_this_hand, hole_cards, has_folded, is_all_in, cashed_out,
		       ready_for_next_hand, final_stack
		FROM player_games WHERE game_id = ?
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PlayerGameState
	for rows.Next() {
		var p PlayerGameState
		if err := rows.Scan(
			&p.GameID, &p.PlayerID, &p.SeatIndex, &p.Stack, &p.StartingStack, &p.CurrentBet,
			&p.TotalBetThisHand, &p.HoleCards, &p.HasFolded, &p.IsAllIn, &p.CashedOut,
			&p.ReadyForNextHand, &p.FinalStack,
		); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// DeleteGame removes a game and its seats, actions, and hand histories in
// one transaction.
func (d *DB) DeleteGame(gameID string) error {
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, stmt := range []string{
		"DELETE FROM player_games WHERE game_id = ?",
		"DELETE FROM game_actions WHERE game_id = ?",
		"DELETE FROM hand_histories WHERE game_id = ?",
		"DELETE FROM games WHERE id = ?",
	} {
		if _, err := tx.Exec(stmt, gameID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// AllGameIDs lists every persisted game, for restart recovery.
func (d *DB) AllGameIDs() ([]string, error) {
	rows, err := d.Query("SELECT id FROM games")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AppendAction records one action to the append-only log.
func (d *DB) AppendAction(a GameActionRow) error {
	_, err := d.Exec(`
		INSERT INTO game_actions (game_id, sequence, seat_index, action, amount, phase, hand_number)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.GameID, a.Sequence, a.SeatIndex, a.Action, a.Amount, a.Phase, a.HandNumber)
	return err
}

// LoadActions returns a game's action log in sequence order.
func (d *DB) LoadActions(gameID string) ([]GameActionRow, error) {
	rows, err := d.Query(`
		SELECT game_id, sequence, seat_index, action, amount, phase, hand_number, created_at
		FROM game_actions WHERE game_id = ? ORDER BY sequence ASC
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GameActionRow
	for rows.Next() {
		var a GameActionRow
		if err := rows.Scan(&a.GameID, &a.Sequence, &a.SeatIndex, &a.Action, &a.Amount, &a.Phase, &a.HandNumber, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SaveHandHistory records one completed hand's summary.
func (d *DB) SaveHandHistory(h HandHistoryRow) error {
	_, err := d.Exec(`
		INSERT OR REPLACE INTO hand_histories (game_id, hand_number, dealer_seat, community_cards, pot_total, winner_info)
		VALUES (?, ?, ?, ?, ?, ?)
	`, h.GameID, h.HandNumber, h.DealerSeat, h.CommunityCards, h.PotTotal, h.WinnerInfo)
	return err
}

// LoadHandHistories returns a game's completed hands, newest first.
func (d *DB) LoadHandHistories(gameID string) ([]HandHistoryRow, error) {
	rows, err := d.Query(`
		SELECT game_id, hand_number, dealer_seat, community_cards, pot_total, winner_info, created_at
		FROM hand_histories WHERE game_id = ? ORDER BY hand_number DESC
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HandHistoryRow
	for rows.Next() {
		var h HandHistoryRow
		if err := rows.Scan(&h.GameID, &h.HandNumber, &h.DealerSeat, &h.CommunityCards, &h.PotTotal, &h.WinnerInfo, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// MarshalCards is a small helper kept next to the schema it feeds: callers
// persist card slices as JSON text, matching the reference's
// community_cards/hand columns.
func MarshalCards(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"spiritclash/internal/battle"
	"spiritclash/internal/combat"
)

type SQLite struct {
	db    *sql.DB
	stats StatCalculator
}

func OpenSQLite(path string, stats StatCalculator) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %s: %w", pragma, err)
		}
	}
	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db, stats: stats}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// AddSpirit inserts or replaces an owned spirit. A negative health means the
// spirit starts at full health.
func (s *SQLite) AddSpirit(rec battle.SpiritRecord) error {
	if rec.Level < 1 {
		rec.Level = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO spirits (instance_id, spirit_id, nickname, level, health)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (instance_id) DO UPDATE SET
		   spirit_id = excluded.spirit_id,
		   nickname = excluded.nickname,
		   level = excluded.level,
		   health = excluded.health`,
		rec.InstanceID, rec.SpiritID, rec.Nickname, rec.Level, rec.Health)
	if err != nil {
		return fmt.Errorf("add spirit %s: %w", rec.InstanceID, err)
	}
	return nil
}

func (s *SQLite) FindSpiritsByInstanceID(ids []string) ([]battle.SpiritRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.Query(
		`SELECT instance_id, spirit_id, nickname, level, health FROM spirits WHERE instance_id IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("find spirits: %w", err)
	}
	defer rows.Close()
	var out []battle.SpiritRecord
	for rows.Next() {
		var rec battle.SpiritRecord
		if err := rows.Scan(&rec.InstanceID, &rec.SpiritID, &rec.Nickname, &rec.Level, &rec.Health); err != nil {
			return nil, fmt.Errorf("scan spirit: %w", err)
		}
		out = append(out, fillHealth(s.stats, rec))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find spirits: %w", err)
	}
	return out, nil
}

func (s *SQLite) ComputedStats(rec battle.SpiritRecord) (combat.Stats, error) {
	return computeStats(s.stats, rec)
}

func (s *SQLite) WriteBackHealth(instanceID string, health int) error {
	if health < 0 {
		health = 0
	}
	res, err := s.db.Exec(`UPDATE spirits SET health = ? WHERE instance_id = ?`, health, instanceID)
	if err != nil {
		return fmt.Errorf("write back health %s: %w", instanceID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write back health %s: %w", instanceID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSpiritNotFound, instanceID)
	}
	return nil
}

func (s *SQLite) GrantVictoryReward(amount int) error {
	if amount <= 0 {
		return nil
	}
	if _, err := s.db.Exec(`UPDATE wallet SET currency = currency + ? WHERE id = 1`, amount); err != nil {
		return fmt.Errorf("grant reward: %w", err)
	}
	return nil
}

// HealAllToFull sets every owned spirit to its computed max health.
func (s *SQLite) HealAllToFull() error {
	rows, err := s.db.Query(`SELECT instance_id, spirit_id, level FROM spirits`)
	if err != nil {
		return fmt.Errorf("list spirits: %w", err)
	}
	type target struct {
		id     string
		health int
	}
	var targets []target
	for rows.Next() {
		var rec battle.SpiritRecord
		if err := rows.Scan(&rec.InstanceID, &rec.SpiritID, &rec.Level); err != nil {
			rows.Close()
			return fmt.Errorf("scan spirit: %w", err)
		}
		st, err := computeStats(s.stats, rec)
		if err != nil {
			// Unknown species cannot be measured; mark them full instead.
			targets = append(targets, target{id: rec.InstanceID, health: -1})
			continue
		}
		targets = append(targets, target{id: rec.InstanceID, health: st.MaxHealth})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("list spirits: %w", err)
	}
	rows.Close()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin heal: %w", err)
	}
	for _, t := range targets {
		if _, err := tx.Exec(`UPDATE spirits SET health = ? WHERE instance_id = ?`, t.health, t.id); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("heal %s: %w", t.id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit heal: %w", err)
	}
	return nil
}

func (s *SQLite) GrantEssence(spiritID string, amount int) error {
	if amount <= 0 {
		return nil
	}
	_, err := s.db.Exec(
		`INSERT INTO essence (spirit_id, amount) VALUES (?, ?)
		 ON CONFLICT (spirit_id) DO UPDATE SET amount = amount + excluded.amount`,
		spiritID, amount)
	if err != nil {
		return fmt.Errorf("grant essence %s: %w", spiritID, err)
	}
	return nil
}

func (s *SQLite) Currency() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT currency FROM wallet WHERE id = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("read currency: %w", err)
	}
	return n, nil
}

func (s *SQLite) Essence(spiritID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT amount FROM essence WHERE spirit_id = ?`, spiritID).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read essence %s: %w", spiritID, err)
	}
	return n, nil
}

// Package storage 结算成绩的 SQLite 持久化，实现 core.ResultSink
// 使用纯 Go 的 modernc.org/sqlite 驱动，不依赖 CGO
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"bombsim/pkg/core"
)

// Store 成绩库
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	session string // 写入结果时附带的会话标识
}

var _ core.ResultSink = (*Store)(nil)

// Entry 一条结算记录
type Entry struct {
	ID            int64
	Session       string
	Level         int
	Outcome       string
	Score         int
	Bonus         int
	Stars         int
	TimeRemaining float64
	Lives         int
	Stats         core.LevelStats
	CreatedAt     time.Time
}

// Open 打开或创建数据库，路径以 ~ 开头时展开为用户目录
func Open(dbPath string) (*Store, error) {
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session TEXT NOT NULL DEFAULT '',
			level INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			score INTEGER NOT NULL,
			bonus INTEGER NOT NULL DEFAULT 0,
			stars INTEGER NOT NULL DEFAULT 0,
			time_remaining REAL NOT NULL DEFAULT 0,
			lives INTEGER NOT NULL DEFAULT 0,
			bombs_used INTEGER NOT NULL DEFAULT 0,
			enemies_killed INTEGER NOT NULL DEFAULT 0,
			damage_taken INTEGER NOT NULL DEFAULT 0,
			powerups_collected INTEGER NOT NULL DEFAULT 0,
			blocks_destroyed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_results_score ON results(score DESC);
		CREATE INDEX IF NOT EXISTS idx_results_session ON results(session);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close 关闭数据库
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SetSession 之后写入的结果都归到该会话
func (s *Store) SetSession(id string) {
	s.mu.Lock()
	s.session = id
	s.mu.Unlock()
}

// RecordResult 实现 core.ResultSink
func (s *Store) RecordResult(r core.RoundResult) error {
	_, err := s.Save(r)
	return err
}

// Save 写入一条结算，返回记录 ID
func (s *Store) Save(r core.RoundResult) (int64, error) {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()

	result, err := s.db.Exec(
		`INSERT INTO results (session, level, outcome, score, bonus, stars, time_remaining, lives,
			bombs_used, enemies_killed, damage_taken, powerups_collected, blocks_destroyed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session, r.Level, r.Outcome.String(), r.Score, r.Bonus, r.Stars, r.TimeRemaining, r.Lives,
		r.Stats.BombsUsed, r.Stats.EnemiesKilled, r.Stats.DamageTaken, r.Stats.PowerUpsCollected, r.Stats.BlocksDestroyed,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save result: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// TopScores 按分数降序取前 limit 条，只统计终局（game_over / victory）
func (s *Store) TopScores(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.query(
		`SELECT `+entryColumns+` FROM results
		WHERE outcome != ?
		ORDER BY score DESC, id ASC LIMIT ?`,
		core.OutcomeLevelComplete.String(), limit,
	)
}

// SessionResults 某个会话的全部结算，按写入顺序
func (s *Store) SessionResults(session string) ([]Entry, error) {
	return s.query(
		`SELECT `+entryColumns+` FROM results WHERE session = ? ORDER BY id ASC`,
		session,
	)
}

// HighScore 终局最高分，没有记录时为 0
func (s *Store) HighScore() (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM results WHERE outcome != ?",
		core.OutcomeLevelComplete.String(),
	).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	return int(score.Int64), nil
}

const entryColumns = `id, session, level, outcome, score, bonus, stars, time_remaining, lives,
	bombs_used, enemies_killed, damage_taken, powerups_collected, blocks_destroyed, created_at`

func (s *Store) query(q string, args ...any) ([]Entry, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query results: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt any
		if err := rows.Scan(
			&e.ID, &e.Session, &e.Level, &e.Outcome, &e.Score, &e.Bonus, &e.Stars, &e.TimeRemaining, &e.Lives,
			&e.Stats.BombsUsed, &e.Stats.EnemiesKilled, &e.Stats.DamageTaken, &e.Stats.PowerUpsCollected, &e.Stats.BlocksDestroyed,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan result: %w", err)
		}
		// 驱动可能返回 time.Time 或文本
		switch v := createdAt.(type) {
		case time.Time:
			e.CreatedAt = v
		case string:
			if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
				e.CreatedAt = parsed
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: error iterating results: %w", err)
	}
	return entries, nil
}

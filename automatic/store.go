package automatic

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS games (
	id TEXT NOT NULL,
	black TEXT NOT NULL,
	white TEXT NOT NULL,
	black_discs INTEGER NOT NULL,
	white_discs INTEGER NOT NULL,
	margin INTEGER NOT NULL,
	nodes INTEGER NOT NULL,
	moves TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// Store keeps self-play results in a sqlite database.
type Store struct {
	db *sql.DB
}

func OpenStore(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating games table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Insert(ctx context.Context, r *GameResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (id, black, white, black_discs, white_discs, margin, nodes, moves)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Black, r.White, r.BlackDiscs, r.WhiteDiscs, r.Margin, int64(r.Nodes), r.MoveString())
	return err
}

// Record returns the win/draw/loss counts of name over every stored game.
func (s *Store) Record(ctx context.Context, name string) (wins, draws, losses int, err error) {
	row := s.db.QueryRowContext(ctx, `SELECT
		COALESCE(SUM(CASE WHEN (black = ? AND margin > 0) OR (white = ? AND margin < 0) THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN margin = 0 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN (black = ? AND margin < 0) OR (white = ? AND margin > 0) THEN 1 ELSE 0 END), 0)
		FROM games WHERE black = ? OR white = ?`, name, name, name, name, name, name)
	err = row.Scan(&wins, &draws, &losses)
	return
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`).Scan(&n)
	return n, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

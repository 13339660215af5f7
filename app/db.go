package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/Srivats-Srihari/Underfish-V2/app/config"
	"github.com/Srivats-Srihari/Underfish-V2/app/models"

	"github.com/lib/pq"
)

var db *sql.DB

// InitDB connects to Postgres when configured. The bot runs fine without a
// database; game records are simply not kept.
func InitDB(cfg config.PostgresConfig) error {
	if cfg.URL == "" {
		log.Println("POSTGRES_URL not set, game records disabled")
		return nil
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s",
		cfg.Username,
		cfg.Password,
		cfg.URL,
		cfg.Port,
	)

	d, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	if err := d.Ping(); err != nil {
		return fmt.Errorf("db.Ping: %w", err)
	}

	log.Println("Connected to Postgres")
	db = d
	return nil
}

// SaveGameRecord stores one finished game and its move decisions in a single
// transaction. Moves go in via COPY since long games can run past 100 plies.
func SaveGameRecord(ctx context.Context, rec models.GameRecord) error {
	if db == nil {
		// Allow runs without a backing DB.
		return nil
	}
	if rec.GameID == "" {
		return nil
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO games (game_id, when_unix, color, opponent, opponent_rating, rated, speed, status, winner)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (game_id) DO UPDATE SET status = EXCLUDED.status, winner = EXCLUDED.winner;
	`, rec.GameID, rec.When, rec.Color, rec.Opponent, rec.OppRating, rec.Rated, rec.Speed, rec.Status, rec.Winner)
	if err != nil {
		return err
	}

	if len(rec.Moves) > 0 {
		stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
			"game_moves",
			"game_id",
			"ply",
			"move_uci",
			"reason",
			"cp_after",
			"fen",
		))
		if err != nil {
			return err
		}

		for _, m := range rec.Moves {
			if _, err := stmt.Exec(
				rec.GameID,
				m.Ply,
				m.MoveUCI,
				m.Reason,
				nullableInt(m.CPAfter),
				m.FEN,
			); err != nil {
				return err
			}
		}
		// Flush the COPY buffer.
		if _, err := stmt.Exec(); err != nil {
			return err
		}
		if err := stmt.Close(); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadRecentGames returns the newest finished games, without their move lists.
func LoadRecentGames(ctx context.Context, limit int) ([]models.GameRecord, error) {
	if db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.QueryContext(ctx, `
		SELECT game_id, when_unix, color, opponent, opponent_rating, rated, speed, status, winner
		FROM games
		ORDER BY when_unix DESC
		LIMIT $1;
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.GameRecord
	for rows.Next() {
		var rec models.GameRecord
		if err := rows.Scan(
			&rec.GameID,
			&rec.When,
			&rec.Color,
			&rec.Opponent,
			&rec.OppRating,
			&rec.Rated,
			&rec.Speed,
			&rec.Status,
			&rec.Winner,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

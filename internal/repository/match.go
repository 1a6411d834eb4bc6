package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"sudooom.im.mahjong/internal/model"
)

// MatchRepository 对局记录仓库
type MatchRepository struct {
	db *pgxpool.Pool
}

// NewMatchRepository 创建对局记录仓库
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create 保存一场对局
func (r *MatchRepository) Create(ctx context.Context, rec *model.MatchRecord) (int64, error) {
	query := `
		INSERT INTO mahjong_matches (room_id, mode, match_type, players, ended_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		rec.RoomId,
		rec.Mode,
		rec.MatchType,
		rec.Players,
		rec.EndedAt,
	).Scan(&id)
	if err == nil {
		rec.Id = id
	}
	return id, err
}

// SaveMatch 供游戏服务调用
func (r *MatchRepository) SaveMatch(ctx context.Context, rec *model.MatchRecord) error {
	_, err := r.Create(ctx, rec)
	return err
}

// FindByPlayer 玩家最近的对局
func (r *MatchRepository) FindByPlayer(ctx context.Context, playerId string, limit int) ([]*model.MatchRecord, error) {
	query := `
		SELECT id, room_id, mode, match_type, players, ended_at
		FROM mahjong_matches
		WHERE players @> jsonb_build_array(jsonb_build_object('playerId', $1::text))
		ORDER BY ended_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, playerId, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*model.MatchRecord
	for rows.Next() {
		var rec model.MatchRecord
		if err := rows.Scan(&rec.Id, &rec.RoomId, &rec.Mode, &rec.MatchType, &rec.Players, &rec.EndedAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

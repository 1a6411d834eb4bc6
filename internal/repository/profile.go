package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"sudooom.im.mahjong/internal/model"
)

// ProfileRepository 段位档案仓库
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository 创建段位档案仓库
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Load 查找玩家档案，不存在时返回初始档案
func (r *ProfileRepository) Load(ctx context.Context, playerId string) (*model.Profile, error) {
	query := `
		SELECT player_id, rank, rank_points, max_rank, stats, updated_at
		FROM mahjong_profiles WHERE player_id = $1
	`

	var profile model.Profile
	err := r.db.QueryRow(ctx, query, playerId).Scan(
		&profile.PlayerId,
		&profile.Rank,
		&profile.RankPoints,
		&profile.MaxRank,
		&profile.Stats,
		&profile.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.NewProfile(playerId), nil
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// Save 写入玩家档案
func (r *ProfileRepository) Save(ctx context.Context, profile *model.Profile) error {
	query := `
		INSERT INTO mahjong_profiles (player_id, rank, rank_points, max_rank, stats, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (player_id) DO UPDATE SET
			rank = EXCLUDED.rank,
			rank_points = EXCLUDED.rank_points,
			max_rank = EXCLUDED.max_rank,
			stats = EXCLUDED.stats,
			updated_at = EXCLUDED.updated_at
	`

	profile.UpdatedAt = time.Now()
	_, err := r.db.Exec(ctx, query,
		profile.PlayerId,
		string(profile.Rank),
		profile.RankPoints,
		string(profile.MaxRank),
		profile.Stats,
		profile.UpdatedAt,
	)
	return err
}

// TopByRank 段位排行
func (r *ProfileRepository) TopByRank(ctx context.Context, limit int) ([]*model.Profile, error) {
	query := `
		SELECT player_id, rank, rank_points, max_rank, stats, updated_at
		FROM mahjong_profiles
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*model.Profile
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.PlayerId, &p.Rank, &p.RankPoints, &p.MaxRank, &p.Stats, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	model.SortProfiles(profiles)
	if limit > 0 && len(profiles) > limit {
		profiles = profiles[:limit]
	}
	return profiles, nil
}

package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"sudooom.im.mahjong/internal/room"
)

var _ room.Mirror = (*RoomIndex)(nil)

// RoomIndex 玩家位置与房间成员在 Redis 中的镜像，供其他进程查询
type RoomIndex struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRoomIndex 创建房间索引
func NewRoomIndex(client *redis.Client) *RoomIndex {
	return &RoomIndex{
		client: client,
		logger: slog.Default().With("component", "cache.room_index"),
	}
}

// BindPlayer 记录玩家进入房间
func (x *RoomIndex) BindPlayer(ctx context.Context, playerID, roomID string) error {
	roomPlayersKey := BuildRoomPlayersKey(roomID)

	pipe := x.client.TxPipeline()
	pipe.Set(ctx, BuildPlayerRoomKey(playerID), roomID, PlayerRoomTTL)
	pipe.SAdd(ctx, roomPlayersKey, playerID)
	pipe.Expire(ctx, roomPlayersKey, RoomPlayersTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// UnbindPlayer 记录玩家离开房间
func (x *RoomIndex) UnbindPlayer(ctx context.Context, playerID, roomID string) error {
	pipe := x.client.TxPipeline()
	pipe.Del(ctx, BuildPlayerRoomKey(playerID))
	pipe.SRem(ctx, BuildRoomPlayersKey(roomID), playerID)
	_, err := pipe.Exec(ctx)
	return err
}

// SetOpen 更新房间是否出现在大厅列表
func (x *RoomIndex) SetOpen(ctx context.Context, roomID string, open bool) error {
	if open {
		return x.client.SAdd(ctx, OpenRoomsKey, roomID).Err()
	}
	return x.client.SRem(ctx, OpenRoomsKey, roomID).Err()
}

// DropRoom 清理房间的所有镜像数据
func (x *RoomIndex) DropRoom(ctx context.Context, roomID string) error {
	pipe := x.client.TxPipeline()
	pipe.Del(ctx, BuildRoomPlayersKey(roomID))
	pipe.SRem(ctx, OpenRoomsKey, roomID)
	_, err := pipe.Exec(ctx)
	return err
}

// RoomOf 玩家所在房间，不在房间时返回空字符串
func (x *RoomIndex) RoomOf(ctx context.Context, playerID string) (string, error) {
	roomID, err := x.client.Get(ctx, BuildPlayerRoomKey(playerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return roomID, err
}

// Members 房间内的真人玩家
func (x *RoomIndex) Members(ctx context.Context, roomID string) ([]string, error) {
	return x.client.SMembers(ctx, BuildRoomPlayersKey(roomID)).Result()
}

// OpenRooms 可加入的房间
func (x *RoomIndex) OpenRooms(ctx context.Context) ([]string, error) {
	return x.client.SMembers(ctx, OpenRoomsKey).Result()
}

// SaveInvite 保存邀请，ttl 到期后由 Redis 删除
func (x *RoomIndex) SaveInvite(ctx context.Context, inv room.Invite, ttl time.Duration) error {
	key := BuildInviteKey(inv.To)

	pipe := x.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		"room", inv.RoomID,
		"from", inv.From,
		"expires_at", inv.ExpiresAt.UnixMilli(),
	)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// ClearInvite 删除邀请
func (x *RoomIndex) ClearInvite(ctx context.Context, playerID string) error {
	return x.client.Del(ctx, BuildInviteKey(playerID)).Err()
}

// LoadInvite 玩家收到的邀请，没有或已过期时 ok 为 false
func (x *RoomIndex) LoadInvite(ctx context.Context, playerID string) (inv room.Invite, ok bool, err error) {
	fields, err := x.client.HGetAll(ctx, BuildInviteKey(playerID)).Result()
	if err != nil || len(fields) == 0 {
		return room.Invite{}, false, err
	}
	ms, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return room.Invite{}, false, err
	}
	return room.Invite{
		RoomID:    fields["room"],
		From:      fields["from"],
		To:        playerID,
		ExpiresAt: time.UnixMilli(ms),
	}, true, nil
}

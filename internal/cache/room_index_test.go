package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.im.mahjong/internal/room"
)

// newTestIndex 连接本地 Redis 的 15 号库，连不上时跳过
func newTestIndex(t *testing.T) (*RoomIndex, *redis.Client) {
	t.Helper()
	addr := os.Getenv("MAHJONG_TEST_REDIS")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis 不可用: %v", err)
	}
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return NewRoomIndex(client), client
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "mahjong:player:room:alice", BuildPlayerRoomKey("alice"))
	assert.Equal(t, "mahjong:room:players:r1", BuildRoomPlayersKey("r1"))
	assert.Equal(t, "mahjong:invite:bob", BuildInviteKey("bob"))
}

func TestRoomIndexBindUnbind(t *testing.T) {
	x, client := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, x.BindPlayer(ctx, "alice", "r1"))
	require.NoError(t, x.BindPlayer(ctx, "bob", "r1"))

	roomID, err := x.RoomOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "r1", roomID)

	members, err := x.Members(ctx, "r1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, members)

	ttl, err := client.TTL(ctx, BuildPlayerRoomKey("alice")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, x.UnbindPlayer(ctx, "alice", "r1"))
	roomID, err = x.RoomOf(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, roomID)

	members, err = x.Members(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, members)
}

func TestRoomIndexOpenRooms(t *testing.T) {
	x, _ := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, x.SetOpen(ctx, "r1", true))
	require.NoError(t, x.SetOpen(ctx, "r2", true))
	require.NoError(t, x.SetOpen(ctx, "r2", false))
	require.NoError(t, x.BindPlayer(ctx, "alice", "r1"))

	open, err := x.OpenRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, open)

	require.NoError(t, x.DropRoom(ctx, "r1"))
	open, err = x.OpenRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	members, err := x.Members(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestRoomIndexInvites(t *testing.T) {
	x, client := newTestIndex(t)
	ctx := context.Background()

	_, ok, err := x.LoadInvite(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	expires := time.Now().Add(5 * time.Minute).Truncate(time.Millisecond)
	require.NoError(t, x.SaveInvite(ctx, room.Invite{RoomID: "r1", From: "alice", To: "bob", ExpiresAt: expires}, 5*time.Minute))

	inv, ok, err := x.LoadInvite(ctx, "bob")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "r1", inv.RoomID)
	assert.Equal(t, "alice", inv.From)
	assert.Equal(t, "bob", inv.To)
	assert.True(t, expires.Equal(inv.ExpiresAt))

	ttl, err := client.TTL(ctx, BuildInviteKey("bob")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 4*time.Minute)
	assert.LessOrEqual(t, ttl, 5*time.Minute)

	// 短 TTL 到期后 Redis 自动删除
	require.NoError(t, x.SaveInvite(ctx, room.Invite{RoomID: "r2", From: "carol", To: "bob", ExpiresAt: time.Now().Add(50 * time.Millisecond)}, 50*time.Millisecond))
	require.Eventually(t, func() bool {
		_, ok, err := x.LoadInvite(ctx, "bob")
		return err == nil && !ok
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, x.SaveInvite(ctx, room.Invite{RoomID: "r1", From: "alice", To: "bob", ExpiresAt: expires}, 5*time.Minute))
	require.NoError(t, x.ClearInvite(ctx, "bob"))
	_, ok, err = x.LoadInvite(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, ok)
}

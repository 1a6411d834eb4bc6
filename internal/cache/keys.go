package cache

import "time"

const (
	// PlayerRoomKeyPrefix 玩家所在房间
	PlayerRoomKeyPrefix = "mahjong:player:room:"

	// RoomPlayersKeyPrefix 房间真人成员集合
	RoomPlayersKeyPrefix = "mahjong:room:players:"

	// OpenRoomsKey 可加入的房间集合
	OpenRoomsKey = "mahjong:rooms:open"

	// InviteKeyPrefix 玩家收到的邀请（Hash）
	InviteKeyPrefix = "mahjong:invite:"

	PlayerRoomTTL  = 24 * time.Hour
	RoomPlayersTTL = 48 * time.Hour
)

// BuildPlayerRoomKey 构建玩家所在房间 Key
// Key: mahjong:player:room:{playerId}
func BuildPlayerRoomKey(playerID string) string {
	return PlayerRoomKeyPrefix + playerID
}

// BuildRoomPlayersKey 构建房间成员 Key
// Key: mahjong:room:players:{roomId}
func BuildRoomPlayersKey(roomID string) string {
	return RoomPlayersKeyPrefix + roomID
}

// BuildInviteKey 构建邀请 Key
// Key: mahjong:invite:{playerId}
func BuildInviteKey(playerID string) string {
	return InviteKeyPrefix + playerID
}

package nats

// NATS Subject 定义
const (
	// SubjectCommand 玩家指令，网关以 request/reply 方式发送
	SubjectCommand = "mahjong.command"

	// QueueGroupMahjong 多个游戏节点共同消费指令
	QueueGroupMahjong = "mahjong"

	subjectRoomPrefix   = "mahjong.room."
	subjectPlayerPrefix = "mahjong.player."
)

// BuildRoomSubject 构建房间事件的 Subject
// 例如: mahjong.room.{roomId}
func BuildRoomSubject(roomId string) string {
	return subjectRoomPrefix + roomId
}

// BuildPlayerSubject 构建玩家私有事件的 Subject
// 例如: mahjong.player.{playerId}
func BuildPlayerSubject(playerId string) string {
	return subjectPlayerPrefix + playerId
}

package bus

// NATS Subject 常量定义
const (
	// SubjectChatBroadcast 网关节点之间的聊天事件广播
	// 每个节点都订阅，自己发布的消息通过 NodeID 过滤
	SubjectChatBroadcast = "estate.chat.broadcast"
)

package serializer

// Serializer 抽象了网络层“对象 <-> 字节流”的序列化能力。
//
// 调用方通过接口注入具体实现，消息模式的 codec 只依赖这一接口。
type Serializer interface {
	// Marshal 将任意对象编码为字节序列。
	Marshal(v any) ([]byte, error)

	// Unmarshal 将字节序列解码到目标对象。
	//
	// v 必须为非 nil 指针，用于接收解码结果。
	Unmarshal(data []byte, v any) error
}

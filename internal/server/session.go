package server

// Session 房间看到的一个观看端，Connection 是唯一的网络实现
type Session interface {
	ID() int
	Send(data []byte) error
	Close()
}

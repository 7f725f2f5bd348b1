package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize 单个消息的上限，整帧快照远小于它
const MaxFrameSize = 64 * 1024

// ErrFrameTooLarge 长度前缀超过上限
var ErrFrameTooLarge = errors.New("frame too large")

// WriteFrame 写出 4 字节大端长度前缀和消息体
func WriteFrame(w io.Writer, data []byte) error {
	if len(data) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(data))
	}
	buf := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(buf, uint32(len(data)))
	copy(buf[4:], data)
	_, err := w.Write(buf)
	return err
}

// ReadFrame 读取一个长度前缀消息，空消息返回空切片
func ReadFrame(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, err
	}
	if length > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}

// WritePacket 编码并写出一个 Packet
func WritePacket(w io.Writer, pkt Packet) error {
	return WriteFrame(w, MarshalPacket(pkt))
}

// ReadPacket 读取并解码一个 Packet
func ReadPacket(r io.Reader) (Packet, error) {
	data, err := ReadFrame(r)
	if err != nil {
		return Packet{}, err
	}
	return UnmarshalPacket(data)
}

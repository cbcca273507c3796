// Package protocol implements the chunked wire framing: a fixed 12-byte
// big-endian header per packet followed by data_len bytes of RGB565
// pixels. encoding/binary is the idiom reached for whenever a wire
// struct needs fixed-width fields (e.g. Gh0st0ne-netcap's packet
// decoders), so that is what this package uses.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// HeaderSize is the fixed size of a packet header in bytes.
const HeaderSize = 12

// Header is the fixed 12-byte chunk header: x, y, w, h (u16 BE) and
// data_len (u32 BE).
type Header struct {
	X, Y, W, H uint16
	DataLen    uint32
}

// Encode writes the header in big-endian wire order.
func (h Header) Encode() [HeaderSize]byte {
	var buf [HeaderSize]byte
	binary.BigEndian.PutUint16(buf[0:2], h.X)
	binary.BigEndian.PutUint16(buf[2:4], h.Y)
	binary.BigEndian.PutUint16(buf[4:6], h.W)
	binary.BigEndian.PutUint16(buf[6:8], h.H)
	binary.BigEndian.PutUint32(buf[8:12], h.DataLen)
	return buf
}

// DecodeHeader parses a 12-byte big-endian header, for use by test clients
// that verify what the server wrote.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("protocol: short header, got %d bytes", len(buf))
	}
	return Header{
		X:       binary.BigEndian.Uint16(buf[0:2]),
		Y:       binary.BigEndian.Uint16(buf[2:4]),
		W:       binary.BigEndian.Uint16(buf[4:6]),
		H:       binary.BigEndian.Uint16(buf[6:8]),
		DataLen: binary.BigEndian.Uint32(buf[8:12]),
	}, nil
}

// Packet is one on-wire chunk: a header plus its RGB565 payload.
type Packet struct {
	Header Header
	Data   []byte
}

// NewPacket builds a Packet for a chunk rect and its already-packed RGB565
// payload. data must be exactly w*h*2 bytes.
func NewPacket(x, y, w, h int, data []byte) (Packet, error) {
	wantLen := w * h * 2
	if len(data) != wantLen {
		return Packet{}, fmt.Errorf("protocol: data_len mismatch: got %d bytes for %dx%d chunk, want %d", len(data), w, h, wantLen)
	}
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x > 0xFFFF || y > 0xFFFF || w > 0xFFFF || h > 0xFFFF {
		return Packet{}, fmt.Errorf("protocol: chunk rect (%d,%d,%d,%d) out of u16 range", x, y, w, h)
	}
	return Packet{
		Header: Header{X: uint16(x), Y: uint16(y), W: uint16(w), H: uint16(h), DataLen: uint32(wantLen)},
		Data:   data,
	}, nil
}

// WriteTo writes the header and payload as a single write, matching a
// sendall of the concatenated bytes. The caller (pipeline.Consumer) sets a
// write deadline on the socket before calling this and treats any error —
// including a deadline timeout mid-write — as a socket error that ends the
// session.
func (p Packet) WriteTo(w io.Writer) (int64, error) {
	header := p.Header.Encode()
	buf := make([]byte, 0, HeaderSize+len(p.Data))
	buf = append(buf, header[:]...)
	buf = append(buf, p.Data...)
	n, err := w.Write(buf)
	return int64(n), err
}

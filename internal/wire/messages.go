package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Message is implemented by every NetTrx payload type. payloadBytes returns
// the wire-format bytes following the 8-byte header (possibly empty).
type Message interface {
	Type() Type
	payloadBytes() []byte
}

// Encode serializes msg into a full wire frame: header plus payload.
func Encode(msg Message) []byte {
	payload := msg.payloadBytes()
	size := HeaderSize + len(payload)
	buf := make([]byte, size)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(msg.Type()))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(size))
	copy(buf[8:], payload)
	return buf
}

// ---- handshake and header-only messages ----

type ProtoVer struct{ Major, Minor uint16 }

func (ProtoVer) Type() Type { return TypeProtoVer }
func (m ProtoVer) payloadBytes() []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint16(b[0:2], m.Major)
	binary.LittleEndian.PutUint16(b[2:4], m.Minor)
	return b
}

type Heartbeat struct{}

func (Heartbeat) Type() Type             { return TypeHeartbeat }
func (Heartbeat) payloadBytes() []byte   { return nil }

type AuthChallenge struct{ Nonce [32]byte }

func (AuthChallenge) Type() Type { return TypeAuthChallenge }
func (m AuthChallenge) payloadBytes() []byte {
	b := make([]byte, 32)
	copy(b, m.Nonce[:])
	return b
}

type AuthResponse struct{ Digest [20]byte }

func (AuthResponse) Type() Type { return TypeAuthResponse }
func (m AuthResponse) payloadBytes() []byte {
	b := make([]byte, 20)
	copy(b, m.Digest[:])
	return b
}

type AuthOk struct{}

func (AuthOk) Type() Type           { return TypeAuthOk }
func (AuthOk) payloadBytes() []byte { return nil }

type Reset struct{}

func (Reset) Type() Type           { return TypeReset }
func (Reset) payloadBytes() []byte { return nil }

type Flush struct{}

func (Flush) Type() Type           { return TypeFlush }
func (Flush) payloadBytes() []byte { return nil }

type TxTimeout struct{}

func (TxTimeout) Type() Type           { return TypeTxTimeout }
func (TxTimeout) payloadBytes() []byte { return nil }

type AllSamplesFlushed struct{}

func (AllSamplesFlushed) Type() Type           { return TypeAllSamplesFlushed }
func (AllSamplesFlushed) payloadBytes() []byte { return nil }

// ---- codec select ----

type RxAudioCodecSelect struct {
	Name    string
	Options []CodecOption
}

func (RxAudioCodecSelect) Type() Type { return TypeRxAudioCodecSelect }
func (m RxAudioCodecSelect) payloadBytes() []byte {
	return encodeCodecSelect(m.Name, m.Options)
}

type TxAudioCodecSelect struct {
	Name    string
	Options []CodecOption
}

func (TxAudioCodecSelect) Type() Type { return TypeTxAudioCodecSelect }
func (m TxAudioCodecSelect) payloadBytes() []byte {
	return encodeCodecSelect(m.Name, m.Options)
}

func encodeCodecSelect(name string, opts []CodecOption) []byte {
	b := make([]byte, CodecNameSize+1+CodecOptionsAreaSize)
	copy(b[0:CodecNameSize], []byte(name))
	if len(opts) > 255 {
		opts = opts[:255]
	}
	b[CodecNameSize] = byte(len(opts))
	area := b[CodecNameSize+1:]
	off := 0
	for _, o := range opts {
		n, v := o.Name, o.Value
		if len(n) > 255 {
			n = n[:255]
		}
		if len(v) > 255 {
			v = v[:255]
		}
		need := 1 + len(n) + 1 + len(v)
		if off+need > CodecOptionsAreaSize {
			break
		}
		area[off] = byte(len(n))
		off++
		off += copy(area[off:], n)
		area[off] = byte(len(v))
		off++
		off += copy(area[off:], v)
	}
	return b
}

func decodeCodecSelect(p []byte) (name string, opts []CodecOption, err error) {
	if len(p) < CodecNameSize+1 {
		return "", nil, fmt.Errorf("codec select payload too short: %d bytes", len(p))
	}
	nameRaw := p[0:CodecNameSize]
	nul := CodecNameSize
	for i, c := range nameRaw {
		if c == 0 {
			nul = i
			break
		}
	}
	name = string(nameRaw[:nul])
	count := int(p[CodecNameSize])
	area := p[CodecNameSize+1:]
	if len(area) > CodecOptionsAreaSize {
		area = area[:CodecOptionsAreaSize]
	}
	off := 0
	for i := 0; i < count; i++ {
		if off >= len(area) {
			break
		}
		nlen := int(area[off])
		off++
		if off+nlen > len(area) {
			break
		}
		n := string(area[off : off+nlen])
		off += nlen
		if off >= len(area) {
			break
		}
		vlen := int(area[off])
		off++
		if off+vlen > len(area) {
			break
		}
		v := string(area[off : off+vlen])
		off += vlen
		opts = append(opts, CodecOption{Name: n, Value: v})
	}
	return name, opts, nil
}

// ---- Audio ----

type Audio struct{ Data []byte }

func (Audio) Type() Type { return TypeAudio }
func (m Audio) payloadBytes() []byte {
	b := make([]byte, 4+len(m.Data))
	binary.LittleEndian.PutUint32(b[0:4], uint32(len(m.Data)))
	copy(b[4:], m.Data)
	return b
}

// ---- control/state messages ----

type SetMuteState struct{ State MuteState }

func (SetMuteState) Type() Type             { return TypeSetMuteState }
func (m SetMuteState) payloadBytes() []byte { return []byte{byte(m.State)} }

type AddToneDetector struct {
	FreqHz      float32
	BandwidthHz int32
	Threshold   float32
	RequiredMs  int32
}

func (AddToneDetector) Type() Type { return TypeAddToneDetector }
func (m AddToneDetector) payloadBytes() []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(m.FreqHz))
	binary.LittleEndian.PutUint32(b[4:8], uint32(m.BandwidthHz))
	binary.LittleEndian.PutUint32(b[8:12], math.Float32bits(m.Threshold))
	binary.LittleEndian.PutUint32(b[12:16], uint32(m.RequiredMs))
	return b
}

type SetRxFq struct{ Hz uint32 }

func (SetRxFq) Type() Type { return TypeSetRxFq }
func (m SetRxFq) payloadBytes() []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, m.Hz)
	return b
}

type SetRxModulation struct{ Modulation Modulation }

func (SetRxModulation) Type() Type             { return TypeSetRxModulation }
func (m SetRxModulation) payloadBytes() []byte { return []byte{byte(m.Modulation)} }

type SetTxFq struct{ Hz uint32 }

func (SetTxFq) Type() Type { return TypeSetTxFq }
func (m SetTxFq) payloadBytes() []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, m.Hz)
	return b
}

type SetTxModulation struct{ Modulation Modulation }

func (SetTxModulation) Type() Type             { return TypeSetTxModulation }
func (m SetTxModulation) payloadBytes() []byte { return []byte{byte(m.Modulation)} }

type Squelch struct {
	Open   bool
	Siglev float32
	RxID   uint8
}

func (Squelch) Type() Type { return TypeSquelch }
func (m Squelch) payloadBytes() []byte {
	b := make([]byte, 6)
	if m.Open {
		b[0] = 1
	}
	binary.LittleEndian.PutUint32(b[1:5], math.Float32bits(m.Siglev))
	b[5] = m.RxID
	return b
}

type Dtmf struct {
	Digit      byte
	DurationMs int32
}

func (Dtmf) Type() Type { return TypeDtmf }
func (m Dtmf) payloadBytes() []byte {
	b := make([]byte, 5)
	b[0] = m.Digit
	binary.LittleEndian.PutUint32(b[1:5], uint32(m.DurationMs))
	return b
}

type Tone struct{ FreqHz float32 }

func (Tone) Type() Type { return TypeTone }
func (m Tone) payloadBytes() []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(m.FreqHz))
	return b
}

type Sel5 struct{ Digits string }

func (Sel5) Type() Type { return TypeSel5 }
func (m Sel5) payloadBytes() []byte { return encodeVarString(m.Digits, MaxSel5Digits) }

type SiglevUpdate struct {
	Siglev float32
	RxID   uint8
}

func (SiglevUpdate) Type() Type { return TypeSiglevUpdate }
func (m SiglevUpdate) payloadBytes() []byte {
	b := make([]byte, 5)
	binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(m.Siglev))
	b[4] = m.RxID
	return b
}

type SetTxCtrlMode struct{ Mode TxCtrlMode }

func (SetTxCtrlMode) Type() Type             { return TypeSetTxCtrlMode }
func (m SetTxCtrlMode) payloadBytes() []byte { return []byte{byte(m.Mode)} }

type EnableCtcss struct{ Enable bool }

func (EnableCtcss) Type() Type { return TypeEnableCtcss }
func (m EnableCtcss) payloadBytes() []byte {
	if m.Enable {
		return []byte{1}
	}
	return []byte{0}
}

type SendDtmf struct {
	DurationMs uint32
	Digits     string
}

func (SendDtmf) Type() Type { return TypeSendDtmf }
func (m SendDtmf) payloadBytes() []byte {
	tail := encodeVarString(m.Digits, MaxSendDtmfDigits)
	b := make([]byte, 4+len(tail))
	binary.LittleEndian.PutUint32(b[0:4], m.DurationMs)
	copy(b[4:], tail)
	return b
}

type TransmittedSignalStrength struct {
	Siglev float32
	RxID   uint8
}

func (TransmittedSignalStrength) Type() Type { return TypeTransmittedSignalStrength }
func (m TransmittedSignalStrength) payloadBytes() []byte {
	b := make([]byte, 5)
	binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(m.Siglev))
	b[4] = m.RxID
	return b
}

type TransmitterStateChange struct{ Transmitting bool }

func (TransmitterStateChange) Type() Type { return TypeTransmitterStateChange }
func (m TransmitterStateChange) payloadBytes() []byte {
	if m.Transmitting {
		return []byte{1}
	}
	return []byte{0}
}

func encodeVarString(s string, max int) []byte {
	if len(s) > max {
		s = s[:max]
	}
	b := make([]byte, 1+len(s))
	b[0] = byte(len(s))
	copy(b[1:], s)
	return b
}

func decodeVarString(p []byte) (string, error) {
	if len(p) < 1 {
		return "", fmt.Errorf("variable-length string payload too short")
	}
	n := int(p[0])
	if 1+n > len(p) {
		return "", fmt.Errorf("variable-length string declares %d bytes but only %d available", n, len(p)-1)
	}
	return string(p[1 : 1+n]), nil
}

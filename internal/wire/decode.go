package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Decode builds a Message from a header-identified type and its raw
// payload bytes (payload excludes the 8-byte header). Trailing unused
// bytes in a fixed-size slot are ignored, per spec.md §4.1.
func Decode(t Type, payload []byte) (Message, error) {
	switch t {
	case TypeProtoVer:
		if len(payload) < 4 {
			return nil, shortPayload(t, 4, len(payload))
		}
		return ProtoVer{
			Major: binary.LittleEndian.Uint16(payload[0:2]),
			Minor: binary.LittleEndian.Uint16(payload[2:4]),
		}, nil

	case TypeHeartbeat:
		return Heartbeat{}, nil

	case TypeAuthChallenge:
		if len(payload) < 32 {
			return nil, shortPayload(t, 32, len(payload))
		}
		var m AuthChallenge
		copy(m.Nonce[:], payload[:32])
		return m, nil

	case TypeAuthResponse:
		if len(payload) < 20 {
			return nil, shortPayload(t, 20, len(payload))
		}
		var m AuthResponse
		copy(m.Digest[:], payload[:20])
		return m, nil

	case TypeAuthOk:
		return AuthOk{}, nil

	case TypeRxAudioCodecSelect:
		name, opts, err := decodeCodecSelect(payload)
		if err != nil {
			return nil, err
		}
		return RxAudioCodecSelect{Name: name, Options: opts}, nil

	case TypeTxAudioCodecSelect:
		name, opts, err := decodeCodecSelect(payload)
		if err != nil {
			return nil, err
		}
		return TxAudioCodecSelect{Name: name, Options: opts}, nil

	case TypeAudio:
		if len(payload) < 4 {
			return nil, shortPayload(t, 4, len(payload))
		}
		n := binary.LittleEndian.Uint32(payload[0:4])
		if int(n) > len(payload)-4 {
			return nil, fmt.Errorf("Audio declares %d bytes but only %d available", n, len(payload)-4)
		}
		if n > MaxAudioPayload {
			return nil, fmt.Errorf("Audio payload %d exceeds MaxAudioPayload %d", n, MaxAudioPayload)
		}
		data := make([]byte, n)
		copy(data, payload[4:4+n])
		return Audio{Data: data}, nil

	case TypeSetMuteState:
		if len(payload) < 1 {
			return nil, shortPayload(t, 1, len(payload))
		}
		return SetMuteState{State: MuteState(payload[0])}, nil

	case TypeAddToneDetector:
		if len(payload) < 16 {
			return nil, shortPayload(t, 16, len(payload))
		}
		return AddToneDetector{
			FreqHz:      math.Float32frombits(binary.LittleEndian.Uint32(payload[0:4])),
			BandwidthHz: int32(binary.LittleEndian.Uint32(payload[4:8])),
			Threshold:   math.Float32frombits(binary.LittleEndian.Uint32(payload[8:12])),
			RequiredMs:  int32(binary.LittleEndian.Uint32(payload[12:16])),
		}, nil

	case TypeReset:
		return Reset{}, nil

	case TypeSetRxFq:
		if len(payload) < 4 {
			return nil, shortPayload(t, 4, len(payload))
		}
		return SetRxFq{Hz: binary.LittleEndian.Uint32(payload[0:4])}, nil

	case TypeSetRxModulation:
		if len(payload) < 1 {
			return nil, shortPayload(t, 1, len(payload))
		}
		return SetRxModulation{Modulation: Modulation(payload[0])}, nil

	case TypeSquelch:
		if len(payload) < 6 {
			return nil, shortPayload(t, 6, len(payload))
		}
		return Squelch{
			Open:   payload[0] != 0,
			Siglev: math.Float32frombits(binary.LittleEndian.Uint32(payload[1:5])),
			RxID:   payload[5],
		}, nil

	case TypeDtmf:
		if len(payload) < 5 {
			return nil, shortPayload(t, 5, len(payload))
		}
		return Dtmf{
			Digit:      payload[0],
			DurationMs: int32(binary.LittleEndian.Uint32(payload[1:5])),
		}, nil

	case TypeTone:
		if len(payload) < 4 {
			return nil, shortPayload(t, 4, len(payload))
		}
		return Tone{FreqHz: math.Float32frombits(binary.LittleEndian.Uint32(payload[0:4]))}, nil

	case TypeSel5:
		s, err := decodeVarString(payload)
		if err != nil {
			return nil, err
		}
		return Sel5{Digits: s}, nil

	case TypeSiglevUpdate:
		if len(payload) < 5 {
			return nil, shortPayload(t, 5, len(payload))
		}
		return SiglevUpdate{
			Siglev: math.Float32frombits(binary.LittleEndian.Uint32(payload[0:4])),
			RxID:   payload[4],
		}, nil

	case TypeSetTxCtrlMode:
		if len(payload) < 1 {
			return nil, shortPayload(t, 1, len(payload))
		}
		return SetTxCtrlMode{Mode: TxCtrlMode(payload[0])}, nil

	case TypeEnableCtcss:
		if len(payload) < 1 {
			return nil, shortPayload(t, 1, len(payload))
		}
		return EnableCtcss{Enable: payload[0] != 0}, nil

	case TypeSendDtmf:
		if len(payload) < 4 {
			return nil, shortPayload(t, 4, len(payload))
		}
		dur := binary.LittleEndian.Uint32(payload[0:4])
		s, err := decodeVarString(payload[4:])
		if err != nil {
			return nil, err
		}
		return SendDtmf{DurationMs: dur, Digits: s}, nil

	case TypeFlush:
		return Flush{}, nil

	case TypeTransmittedSignalStrength:
		if len(payload) < 5 {
			return nil, shortPayload(t, 5, len(payload))
		}
		return TransmittedSignalStrength{
			Siglev: math.Float32frombits(binary.LittleEndian.Uint32(payload[0:4])),
			RxID:   payload[4],
		}, nil

	case TypeSetTxFq:
		if len(payload) < 4 {
			return nil, shortPayload(t, 4, len(payload))
		}
		return SetTxFq{Hz: binary.LittleEndian.Uint32(payload[0:4])}, nil

	case TypeSetTxModulation:
		if len(payload) < 1 {
			return nil, shortPayload(t, 1, len(payload))
		}
		return SetTxModulation{Modulation: Modulation(payload[0])}, nil

	case TypeTxTimeout:
		return TxTimeout{}, nil

	case TypeTransmitterStateChange:
		if len(payload) < 1 {
			return nil, shortPayload(t, 1, len(payload))
		}
		return TransmitterStateChange{Transmitting: payload[0] != 0}, nil

	case TypeAllSamplesFlushed:
		return AllSamplesFlushed{}, nil

	default:
		return nil, fmt.Errorf("unknown message type %d", uint32(t))
	}
}

func shortPayload(t Type, want, got int) error {
	return fmt.Errorf("%s payload too short: want >= %d bytes, got %d", t, want, got)
}

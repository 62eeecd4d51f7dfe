package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func allSampleMessages() []Message {
	return []Message{
		ProtoVer{Major: 2, Minor: 7},
		Heartbeat{},
		AuthChallenge{},
		AuthResponse{},
		AuthOk{},
		RxAudioCodecSelect{Name: "opus", Options: []CodecOption{{Name: "bitrate", Value: "16000"}}},
		Audio{Data: []byte{1, 2, 3, 4, 5}},
		SetMuteState{State: MuteContent},
		Reset{},
		SetRxFq{Hz: 144800000},
		SetRxModulation{Modulation: ModNBFM},
		Squelch{Open: true, Siglev: 0.75, RxID: 1},
		Dtmf{Digit: '5', DurationMs: 100},
		Tone{FreqHz: 1750},
		Sel5{Digits: "12345"},
		SiglevUpdate{Siglev: 0.5, RxID: 2},
		SetTxCtrlMode{Mode: TxCtrlOn},
		EnableCtcss{Enable: true},
		SendDtmf{DurationMs: 250, Digits: "159"},
		Flush{},
		TransmittedSignalStrength{Siglev: 0.3, RxID: 1},
		TxTimeout{},
		TransmitterStateChange{Transmitting: true},
		AllSamplesFlushed{},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, msg := range allSampleMessages() {
		buf := Encode(msg)
		require.GreaterOrEqual(t, len(buf), HeaderSize)
		r := NewReassembler(MinReassemblyBuffer)
		frames, err := r.Feed(buf)
		require.NoError(t, err)
		require.Len(t, frames, 1)
		require.Equal(t, msg.Type(), frames[0].Type)
		decoded, err := Decode(frames[0].Type, frames[0].Payload)
		require.NoError(t, err)
		require.Equal(t, msg, decoded)
	}
}

// TestFramingSurvivesArbitrarySplits is the §8 testable property: for any
// stream of N messages serialized and fed in random chunks of 1-7 bytes,
// the decoder yields exactly those N messages in order.
func TestFramingSurvivesArbitrarySplits(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		samples := allSampleMessages()
		n := rapid.IntRange(1, 8).Draw(rt, "n")
		var wire []byte
		var want []Type
		for i := 0; i < n; i++ {
			msg := samples[rapid.IntRange(0, len(samples)-1).Draw(rt, "msgIdx")]
			wire = append(wire, Encode(msg)...)
			want = append(want, msg.Type())
		}

		r := NewReassembler(8192)
		var got []Type
		pos := 0
		for pos < len(wire) {
			chunk := rapid.IntRange(1, 7).Draw(rt, "chunk")
			end := pos + chunk
			if end > len(wire) {
				end = len(wire)
			}
			frames, err := r.Feed(wire[pos:end])
			if err != nil {
				rt.Fatalf("unexpected framing error: %v", err)
			}
			for _, f := range frames {
				got = append(got, f.Type)
			}
			pos = end
		}

		if len(got) != len(want) {
			rt.Fatalf("got %d frames, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				rt.Fatalf("frame %d: got %v want %v", i, got[i], want[i])
			}
		}
	})
}

func TestShortSizeClosesConnection(t *testing.T) {
	r := NewReassembler(MinReassemblyBuffer)
	buf := make([]byte, 8)
	// type = 1 (Heartbeat), size = 4 (< HeaderSize): protocol error.
	buf[0] = 1
	buf[4] = 4
	_, err := r.Feed(buf)
	require.Error(t, err)
}

func TestOversizedPayloadClosesConnection(t *testing.T) {
	r := NewReassembler(MinReassemblyBuffer)
	buf := make([]byte, 8)
	buf[0] = 1
	// size larger than the reassembly buffer.
	buf[4] = 0xFF
	buf[5] = 0xFF
	buf[6] = 0xFF
	buf[7] = 0x00
	_, err := r.Feed(buf)
	require.Error(t, err)
}

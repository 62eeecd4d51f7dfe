// Package wire implements the NetTrx length-prefixed, typed TCP framing
// described in spec.md §3-§4.1 and §6: an 8-byte header (type, size, both
// u32) followed by a fixed-layout payload. Multi-byte fields are encoded
// little-endian on the wire; this is the explicit choice spec.md §9 calls
// out as unspecified in the original (host-endian) implementation.
package wire

import "fmt"

// HeaderSize is the fixed 8-byte type+size header present on every message.
const HeaderSize = 8

// Type enumerates the message catalog from spec.md §6.
type Type uint32

const (
	TypeProtoVer      Type = 0
	TypeHeartbeat     Type = 1
	TypeAuthChallenge Type = 10
	TypeAuthResponse  Type = 11
	TypeAuthOk        Type = 12

	TypeRxAudioCodecSelect Type = 100
	TypeTxAudioCodecSelect Type = 101
	TypeAudio              Type = 102

	TypeSetMuteState    Type = 200
	TypeAddToneDetector Type = 201
	TypeReset           Type = 202
	TypeSetRxFq         Type = 203
	TypeSetRxModulation Type = 204

	TypeSquelch      Type = 250
	TypeDtmf         Type = 251
	TypeTone         Type = 252
	TypeSel5         Type = 253
	TypeSiglevUpdate Type = 254

	TypeSetTxCtrlMode             Type = 300
	TypeEnableCtcss               Type = 301
	TypeSendDtmf                  Type = 302
	TypeFlush                     Type = 303
	TypeTransmittedSignalStrength Type = 304
	TypeSetTxFq                   Type = 305
	TypeSetTxModulation           Type = 306

	TypeTxTimeout              Type = 350
	TypeTransmitterStateChange Type = 351
	TypeAllSamplesFlushed      Type = 352
)

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(%d)", uint32(t))
}

var typeNames = map[Type]string{
	TypeProtoVer:                  "ProtoVer",
	TypeHeartbeat:                 "Heartbeat",
	TypeAuthChallenge:             "AuthChallenge",
	TypeAuthResponse:              "AuthResponse",
	TypeAuthOk:                    "AuthOk",
	TypeRxAudioCodecSelect:        "RxAudioCodecSelect",
	TypeTxAudioCodecSelect:        "TxAudioCodecSelect",
	TypeAudio:                     "Audio",
	TypeSetMuteState:              "SetMuteState",
	TypeAddToneDetector:           "AddToneDetector",
	TypeReset:                     "Reset",
	TypeSetRxFq:                   "SetRxFq",
	TypeSetRxModulation:           "SetRxModulation",
	TypeSquelch:                   "Squelch",
	TypeDtmf:                      "Dtmf",
	TypeTone:                      "Tone",
	TypeSel5:                      "Sel5",
	TypeSiglevUpdate:              "SiglevUpdate",
	TypeSetTxCtrlMode:             "SetTxCtrlMode",
	TypeEnableCtcss:               "EnableCtcss",
	TypeSendDtmf:                  "SendDtmf",
	TypeFlush:                     "Flush",
	TypeTransmittedSignalStrength: "TransmittedSignalStrength",
	TypeSetTxFq:                   "SetTxFq",
	TypeSetTxModulation:           "SetTxModulation",
	TypeTxTimeout:                 "TxTimeout",
	TypeTransmitterStateChange:    "TransmitterStateChange",
	TypeAllSamplesFlushed:         "AllSamplesFlushed",
}

// MuteState is the SetMuteState payload enum.
type MuteState uint8

const (
	MuteNone MuteState = iota
	MuteContent
	MuteAll
)

// Modulation mirrors spec.md's Modulation enum used by SetRxModulation,
// SetTxModulation, and the DDR/demodulator components.
type Modulation uint8

const (
	ModFM Modulation = iota
	ModNBFM
	ModWBFM
	ModAM
	ModNBAM
	ModUSB
	ModLSB
	ModCW
)

func (m Modulation) String() string {
	switch m {
	case ModFM:
		return "FM"
	case ModNBFM:
		return "NBFM"
	case ModWBFM:
		return "WBFM"
	case ModAM:
		return "AM"
	case ModNBAM:
		return "NBAM"
	case ModUSB:
		return "USB"
	case ModLSB:
		return "LSB"
	case ModCW:
		return "CW"
	default:
		return "UNKNOWN"
	}
}

// TxCtrlMode is the SetTxCtrlMode payload enum.
type TxCtrlMode uint8

const (
	TxCtrlOff TxCtrlMode = iota
	TxCtrlOn
	TxCtrlAuto
)

// CodecNameSize is the fixed name field width in *AudioCodecSelect messages.
const CodecNameSize = 32

// CodecOptionsAreaSize is the fixed options byte area in *AudioCodecSelect
// messages (spec.md §6 "in a fixed 256-byte area").
const CodecOptionsAreaSize = 256

// MaxAudioPayload is the largest encoded-audio payload spec.md §6 allows
// in a single Audio message.
const MaxAudioPayload = 2048

// MaxSel5Digits bounds the Sel5 digit string.
const MaxSel5Digits = 25

// MaxSendDtmfDigits bounds the SendDtmf digit string.
const MaxSendDtmfDigits = 256

// CodecOption is one {name, value} pair carried by a codec-select message.
type CodecOption struct {
	Name  string
	Value string
}

package websocket

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rocketscienceinc/ludo-backend/internal/entity"
	"github.com/rocketscienceinc/ludo-backend/internal/leaderboard"
	"github.com/rocketscienceinc/ludo-backend/internal/ludo"
)

var errConnectionClosed = errors.New("connection closed by peer")

const (
	opText  = 0x1
	opClose = 0x8
)

// Message is one inbound or outbound WebSocket message: an action name
// plus a JSON payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload carries request fields and response fields; unused ones stay
// empty on the wire.
type Payload struct {
	RoomID   string `json:"room_id,omitempty"`
	PlayerID string `json:"player_id,omitempty"`
	Label    string `json:"label,omitempty"`
	Target   string `json:"target,omitempty"`
	Roll     *int   `json:"roll,omitempty"`
	Bucket   string `json:"bucket,omitempty"`

	Player      *entity.Player      `json:"player,omitempty"`
	Game        *entity.Game        `json:"game,omitempty"`
	Result      *ludo.RollResult    `json:"result,omitempty"`
	Leaderboard []leaderboard.Entry `json:"leaderboard,omitempty"`
	Error       string              `json:"error,omitempty"`
}

func (that *Server) sendMessage(bufrw *bufio.ReadWriter, action string, payload Payload) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	response, err := json.Marshal(Message{Action: action, Payload: payloadBytes})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if err = writeFrame(bufrw, response); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	return nil
}

// writeFrame writes a single unmasked text frame, per RFC 6455 server
// rules.
func writeFrame(bufrw *bufio.ReadWriter, payload []byte) error {
	length := uint64(len(payload))

	header := make([]byte, 2, 10)
	header[0] = 0x80 | opText

	switch {
	case length < 126:
		header[1] = byte(length)
	case length < 1<<16:
		header[1] = 126
		header = header[:4]
		binary.BigEndian.PutUint16(header[2:], uint16(length))
	default:
		header[1] = 127
		header = header[:10]
		binary.BigEndian.PutUint64(header[2:], length)
	}

	if _, err := bufrw.Write(header); err != nil {
		return fmt.Errorf("failed to write frame header: %w", err)
	}

	if _, err := bufrw.Write(payload); err != nil {
		return fmt.Errorf("failed to write frame payload: %w", err)
	}

	if err := bufrw.Flush(); err != nil {
		return fmt.Errorf("failed to flush frame: %w", err)
	}

	return nil
}

// readFrame reads one masked client frame and returns its unmasked
// payload. Close frames surface as errConnectionClosed.
func readFrame(bufrw *bufio.ReadWriter) ([]byte, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(bufrw, header); err != nil {
		return nil, fmt.Errorf("failed to read frame header: %w", err)
	}

	opCode := header[0] & 0x0f
	if opCode == opClose {
		return nil, errConnectionClosed
	}

	masked := header[1]&0x80 != 0
	length := uint64(header[1] & 0x7f)

	switch length {
	case 126:
		extended := make([]byte, 2)
		if _, err := io.ReadFull(bufrw, extended); err != nil {
			return nil, fmt.Errorf("failed to read extended length: %w", err)
		}
		length = uint64(binary.BigEndian.Uint16(extended))
	case 127:
		extended := make([]byte, 8)
		if _, err := io.ReadFull(bufrw, extended); err != nil {
			return nil, fmt.Errorf("failed to read extended length: %w", err)
		}
		length = binary.BigEndian.Uint64(extended)
	}

	var maskKey [4]byte
	if masked {
		if _, err := io.ReadFull(bufrw, maskKey[:]); err != nil {
			return nil, fmt.Errorf("failed to read mask key: %w", err)
		}
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(bufrw, payload); err != nil {
		return nil, fmt.Errorf("failed to read frame payload: %w", err)
	}

	if masked {
		for i := range payload {
			payload[i] ^= maskKey[i%4]
		}
	}

	return payload, nil
}

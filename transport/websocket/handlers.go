package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/ludo-backend/internal/leaderboard"
)

func decodePayload(message *Message) (*Payload, error) {
	var payload Payload
	if len(message.Payload) == 0 {
		return &payload, nil
	}

	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return &payload, nil
}

func (that *Server) handleCreate(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	if payloadReq.RoomID == "" || payloadReq.PlayerID == "" {
		return that.sendErrorResponse(bufrw, msg.Action, "room_id and player_id are required")
	}

	game, err := that.manager.CreateSession(ctx, payloadReq.RoomID, payloadReq.PlayerID)
	if err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, err.Error())
	}

	that.joinRoom(game.RoomID, bufrw)

	return that.sendMessage(bufrw, msg.Action, Payload{RoomID: game.RoomID, Game: game})
}

func (that *Server) handleJoin(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	player, err := that.manager.Join(ctx, payloadReq.RoomID, payloadReq.PlayerID, payloadReq.Label)
	if err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, err.Error())
	}

	that.joinRoom(payloadReq.RoomID, bufrw)
	that.broadcast(payloadReq.RoomID, msg.Action, Payload{RoomID: payloadReq.RoomID, Player: player})

	return nil
}

func (that *Server) handleLeave(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	game, err := that.manager.Leave(ctx, payloadReq.RoomID, payloadReq.PlayerID)
	if err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, err.Error())
	}

	that.broadcast(payloadReq.RoomID, msg.Action, Payload{RoomID: payloadReq.RoomID, Game: game})

	return nil
}

func (that *Server) handleKick(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	targetID := payloadReq.Target
	if targetID == "" && payloadReq.Label != "" {
		// kick by display label, the way chat mentions arrive
		target, resolveErr := that.manager.ResolveTarget(payloadReq.RoomID, payloadReq.Label)
		if resolveErr != nil {
			return that.sendErrorResponse(bufrw, msg.Action, resolveErr.Error())
		}
		if target == nil {
			return that.sendErrorResponse(bufrw, msg.Action, "no such player")
		}
		targetID = target.ID
	}

	game, err := that.manager.Kick(ctx, payloadReq.RoomID, payloadReq.PlayerID, targetID)
	if err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, err.Error())
	}

	that.broadcast(payloadReq.RoomID, msg.Action, Payload{RoomID: payloadReq.RoomID, Game: game})

	return nil
}

func (that *Server) handleBegin(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	game, err := that.manager.BeginGame(ctx, payloadReq.RoomID)
	if err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, err.Error())
	}

	that.broadcast(payloadReq.RoomID, msg.Action, Payload{RoomID: payloadReq.RoomID, Game: game, Player: game.CurrentPlayer()})

	return nil
}

func (that *Server) handleRoll(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	if payloadReq.Roll == nil {
		return that.sendErrorResponse(bufrw, msg.Action, "roll is required")
	}

	result, err := that.manager.Roll(ctx, payloadReq.RoomID, payloadReq.PlayerID, *payloadReq.Roll)
	if err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, err.Error())
	}

	that.broadcast(payloadReq.RoomID, msg.Action, Payload{RoomID: payloadReq.RoomID, Result: result})

	return nil
}

func (that *Server) handleAbort(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	if err = that.manager.Abort(ctx, payloadReq.RoomID, payloadReq.PlayerID); err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, err.Error())
	}

	that.broadcast(payloadReq.RoomID, msg.Action, Payload{RoomID: payloadReq.RoomID})

	return nil
}

func (that *Server) handleLeaderboard(_ context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	bucket := payloadReq.Bucket
	if bucket == "" {
		bucket = leaderboard.BucketAllTime
	}

	return that.sendMessage(bufrw, msg.Action, Payload{Bucket: bucket, Leaderboard: that.manager.Leaderboard(bucket)})
}

func (that *Server) sendErrorResponse(bufrw *bufio.ReadWriter, action, errorMsg string) error {
	if err := that.sendMessage(bufrw, action, Payload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}

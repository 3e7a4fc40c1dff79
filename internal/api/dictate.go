package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/MrWong99/painvoice/internal/merge"
	"github.com/MrWong99/painvoice/internal/observe"
	"github.com/MrWong99/painvoice/internal/session"
	"github.com/MrWong99/painvoice/pkg/types"
)

// dictationMessage is one utterance sent by the client.
type dictationMessage struct {
	Text       string                 `json:"text"`
	UserMeds   []types.UserMedication `json:"userMeds"`
	UserEdited merge.UserEditedFlags  `json:"userEdited"`
}

// dictationReply answers one utterance. Error is set instead of the merge
// result when the utterance was rejected.
type dictationReply struct {
	SessionID string `json:"session_id"`
	*session.AppendResult
	Error string `json:"error,omitempty"`
}

// handleDictate upgrades to a websocket and merges every received
// utterance into one review session, in arrival order. The session is
// taken from the "session" query parameter or created. The "userId"
// parameter selects the stored medication list for messages without
// userMeds.
func (s *Server) handleDictate(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, errNoSessions)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	userID := r.URL.Query().Get("userId")

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.origins})
	if err != nil {
		observe.Logger(r.Context()).Warn("dictation: accept failed", "err", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	s.metrics.DictationConnections.Add(ctx, 1)
	defer s.metrics.DictationConnections.Add(context.WithoutCancel(ctx), -1)

	log := observe.Logger(ctx).With("session_id", sessionID)
	log.Info("dictation started")

	err = s.dictate(ctx, conn, sessionID, userID)
	switch status := websocket.CloseStatus(err); {
	case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
		log.Info("dictation finished")
		conn.Close(websocket.StatusNormalClosure, "")
	case errors.Is(err, context.Canceled):
		log.Info("dictation cancelled")
	default:
		log.Warn("dictation aborted", "err", err)
		conn.Close(websocket.StatusInternalError, "dictation failed")
	}
}

// dictate runs the read-merge-reply loop until the connection ends.
func (s *Server) dictate(ctx context.Context, conn *websocket.Conn, sessionID, userID string) error {
	for {
		var msg dictationMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return err
		}

		reply := dictationReply{SessionID: sessionID}
		if strings.TrimSpace(msg.Text) == "" {
			reply.Error = errEmptyText.Error()
			if err := wsjson.Write(ctx, conn, reply); err != nil {
				return err
			}
			continue
		}

		meds := s.userMeds(ctx, msg.UserMeds, userID)
		res, err := s.sessions.Append(ctx, sessionID, msg.Text, meds, msg.UserEdited, s.engine.Load().MergeOptions()...)
		if err != nil {
			s.metrics.RecordStoreError(ctx, "sessions", "append")
			return err
		}
		s.metrics.RecordIntent(ctx, string(res.Entry.Intent.Intent))

		reply.AppendResult = &res
		if err := wsjson.Write(ctx, conn, reply); err != nil {
			return err
		}
	}
}

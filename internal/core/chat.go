package core

import (
	"context"
	"strconv"

	"health-chatbot/internal/llm"
	"health-chatbot/pkg"

	log "github.com/sirupsen/logrus"
)

// Store is the persistence surface the chat service depends on. It is
// satisfied by *db.Store; tests may substitute their own implementation.
type Store interface {
	CreatePatient(ctx context.Context, p *pkg.Patient) (int64, error)
	GetPatient(ctx context.Context, id int64) (*pkg.Patient, error)
	CreateSession(ctx context.Context, sessionID string, patientID int64) error
	AppendMessage(ctx context.Context, sessionID string, role pkg.Role, content string) error
	Messages(ctx context.Context, sessionID string, limit int) ([]pkg.Message, error)
	FirstMessage(ctx context.Context, sessionID string) (*pkg.Message, error)
	CountMessages(ctx context.Context, sessionID string) (int, error)
}

// TurnInput is one incoming user turn.
type TurnInput struct {
	SessionID   string
	Message     string
	PatientID   *int64
	PatientData *pkg.PatientData
}

// ChatService orchestrates a chat turn: it resolves patient context, manages
// the session's persisted history, assembles the conversation and requests a
// completion.
//
// Persistence failures never abort a turn. A store that is down degrades the
// service to a stateless chat: writes are logged and skipped, reads come back
// empty, and the turn still reaches the completion API.
type ChatService struct {
	Store        Store
	LLM          llm.Client
	HistoryLimit int
}

// NewChatService constructs a ChatService. historyLimit bounds the number of
// messages sent to the completion API per turn; values below one fall back
// to the default of 20.
func NewChatService(store Store, client llm.Client, historyLimit int) *ChatService {
	if historyLimit < 1 {
		historyLimit = 20
	}
	return &ChatService{Store: store, LLM: client, HistoryLimit: historyLimit}
}

// HandleTurn processes one user message for a session and returns the
// assistant's reply.
//
// A session with no persisted messages is novel: a session row is created
// (backed by a placeholder patient when no registered patient is
// identifiable) and the system prompt is synthesized and persisted exactly
// once. Every turn persists the user message before the completion call;
// the assistant message is persisted only when the call succeeds. On
// completion failure the typed error is returned and no assistant row is
// written.
func (s *ChatService) HandleTurn(ctx context.Context, in TurnInput) (string, error) {
	patientCtx, ownerID := s.resolvePatient(ctx, in)

	count, err := s.Store.CountMessages(ctx, in.SessionID)
	if err != nil {
		log.WithError(err).WithField("session_id", in.SessionID).
			Warn("failed to count session messages, treating session as new")
	}

	var history []pkg.Message
	if count == 0 {
		history = s.initSession(ctx, in.SessionID, ownerID, patientCtx)
	} else {
		history = s.loadHistory(ctx, in.SessionID)
	}

	messages := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: string(pkg.RoleUser), Content: in.Message})

	if err := s.Store.AppendMessage(ctx, in.SessionID, pkg.RoleUser, in.Message); err != nil {
		log.WithError(err).WithField("session_id", in.SessionID).
			Warn("failed to persist user message")
	}

	reply, err := s.LLM.Complete(ctx, messages)
	if err != nil {
		return "", err
	}

	if err := s.Store.AppendMessage(ctx, in.SessionID, pkg.RoleAssistant, reply); err != nil {
		log.WithError(err).WithField("session_id", in.SessionID).
			Warn("failed to persist assistant message")
	}
	return reply, nil
}

// resolvePatient determines the patient context for the turn. A stored
// record looked up by ID overrides any inline patient data; without a
// resolvable ID the inline data (possibly nil) is used as-is and no owning
// patient is known yet.
func (s *ChatService) resolvePatient(ctx context.Context, in TurnInput) (*pkg.PatientData, int64) {
	if in.PatientID != nil {
		p, err := s.Store.GetPatient(ctx, *in.PatientID)
		if err != nil {
			log.WithError(err).WithField("patient_id", *in.PatientID).
				Warn("failed to look up patient")
		}
		if p != nil {
			return patientContext(p), p.ID
		}
	}
	return in.PatientData, 0
}

// initSession establishes a novel session: it ensures an owning patient
// exists, creates the session row and persists the freshly built system
// prompt. The returned slice is the session's effective history so far.
func (s *ChatService) initSession(ctx context.Context, sessionID string, ownerID int64, patientCtx *pkg.PatientData) []pkg.Message {
	if ownerID == 0 {
		id, err := s.Store.CreatePatient(ctx, placeholderPatient())
		if err != nil {
			log.WithError(err).WithField("session_id", sessionID).
				Warn("failed to create placeholder patient")
		} else {
			ownerID = id
		}
	}
	if ownerID != 0 {
		if err := s.Store.CreateSession(ctx, sessionID, ownerID); err != nil {
			log.WithError(err).WithField("session_id", sessionID).
				Warn("failed to create chat session")
		}
	}

	prompt := BuildSystemPrompt(patientCtx)
	if err := s.Store.AppendMessage(ctx, sessionID, pkg.RoleSystem, prompt); err != nil {
		log.WithError(err).WithField("session_id", sessionID).
			Warn("failed to persist system prompt")
	}
	return []pkg.Message{{SessionID: sessionID, Role: pkg.RoleSystem, Content: prompt}}
}

// loadHistory returns the conversation window for an established session:
// the most recent HistoryLimit messages, with the original system message
// re-anchored at the front if the window has slid past it.
func (s *ChatService) loadHistory(ctx context.Context, sessionID string) []pkg.Message {
	history, err := s.Store.Messages(ctx, sessionID, s.HistoryLimit)
	if err != nil {
		log.WithError(err).WithField("session_id", sessionID).
			Warn("failed to load chat history")
		return nil
	}
	if len(history) > 0 && history[0].Role != pkg.RoleSystem {
		first, err := s.Store.FirstMessage(ctx, sessionID)
		if err != nil {
			log.WithError(err).WithField("session_id", sessionID).
				Warn("failed to load system message")
		} else if first != nil && first.Role == pkg.RoleSystem {
			// Replace the oldest in-window message so the effective
			// prompt keeps both the system message and the window bound.
			history = append([]pkg.Message{*first}, history[1:]...)
		}
	}
	return history
}

// placeholderPatient is the sentinel record backing anonymous sessions, so
// that every session row has an owning patient.
func placeholderPatient() *pkg.Patient {
	return &pkg.Patient{
		FirstName: "Anonymous",
		LastName:  "Patient",
		Age:       0,
		Sex:       "Unknown",
	}
}

// patientContext converts a stored patient record into prompt context.
func patientContext(p *pkg.Patient) *pkg.PatientData {
	return &pkg.PatientData{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Age:            strconv.Itoa(p.Age),
		Sex:            p.Sex,
		Address:        p.Address,
		ContactNumber:  p.ContactNumber,
		MedicalHistory: p.MedicalHistory,
	}
}

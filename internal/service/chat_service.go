package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/activation_api/internal/models"
	"github.com/GTDGit/activation_api/internal/utils"
)

const maxChatMessageLength = 2000

type chatMessageStore interface {
	Create(ctx context.Context, m *models.ChatMessage) error
	ListByDocument(ctx context.Context, documentID int, afterID int64, limit int) ([]models.ChatMessage, error)
}

// Broadcaster pushes a payload to everyone joined to a document room.
type Broadcaster interface {
	Broadcast(room int, v any)
}

// documentVisibility is satisfied by DocumentService.
type documentVisibility interface {
	Get(ctx context.Context, p models.Principal, id int) (*models.Document, error)
}

// liveSessions resolves the principal behind a websocket from its sessions.
type liveSessions interface {
	LiveFor(ctx context.Context, kind models.PrincipalKind, id int) (models.Principal, error)
}

// ChatTicket authorizes one websocket join.
type ChatTicket struct {
	Ticket    string    `json:"ticket"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ChatService persists per-document chat and relays it to joined sockets.
type ChatService struct {
	messages  chatMessageStore
	documents documentVisibility
	sessions  liveSessions
	hub       Broadcaster
	secret    string
	ticketTTL time.Duration
}

// NewChatService creates a new ChatService.
func NewChatService(messages chatMessageStore, documents documentVisibility, sessions liveSessions, hub Broadcaster, secret string, ticketTTL time.Duration) *ChatService {
	return &ChatService{messages: messages, documents: documents, sessions: sessions, hub: hub, secret: secret, ticketTTL: ticketTTL}
}

// IssueTicket returns a short-lived join ticket if p can see the document.
func (s *ChatService) IssueTicket(ctx context.Context, p models.Principal, documentID int) (*ChatTicket, error) {
	if err := s.authorize(ctx, p, documentID); err != nil {
		return nil, err
	}
	ticket, err := utils.GenerateChatTicket(s.secret, p.PrincipalID(), string(p.Kind()), p.DisplayName(), documentID, s.ticketTTL)
	if err != nil {
		return nil, err
	}
	return &ChatTicket{Ticket: ticket, ExpiresAt: time.Now().Add(s.ticketTTL)}, nil
}

// Join validates a ticket for documentID and returns its claims.
func (s *ChatService) Join(ticket string, documentID int) (*utils.ChatTicketClaims, error) {
	claims, err := utils.ValidateChatTicket(s.secret, ticket)
	if err != nil || claims.DocumentID != documentID {
		return nil, utils.Unauthenticated()
	}
	return claims, nil
}

// Send stores a message from p and broadcasts it.
func (s *ChatService) Send(ctx context.Context, p models.Principal, documentID int, body string) (*models.ChatMessage, error) {
	if err := s.authorize(ctx, p, documentID); err != nil {
		return nil, err
	}
	return s.post(ctx, documentID, p.PrincipalID(), p.Kind(), p.DisplayName(), body)
}

// SendWithTicket stores a message from a websocket joined with claims.
// The sender must still hold a live session and still see the document.
func (s *ChatService) SendWithTicket(ctx context.Context, claims *utils.ChatTicketClaims, body string) (*models.ChatMessage, error) {
	p, err := s.Recheck(ctx, claims)
	if err != nil {
		return nil, err
	}
	return s.post(ctx, claims.DocumentID, p.PrincipalID(), p.Kind(), p.DisplayName(), body)
}

// Recheck re-resolves the principal behind a joined websocket and verifies
// it may still chat on the ticket's document. The ticket itself only gates
// the join; membership lasts as long as this check passes.
func (s *ChatService) Recheck(ctx context.Context, claims *utils.ChatTicketClaims) (models.Principal, error) {
	p, err := s.sessions.LiveFor(ctx, models.PrincipalKind(claims.PrincipalKind), claims.PrincipalID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, p, claims.DocumentID); err != nil {
		return nil, err
	}
	return p, nil
}

// History returns messages after afterID, oldest first.
func (s *ChatService) History(ctx context.Context, p models.Principal, documentID int, afterID int64, limit int) ([]models.ChatMessage, error) {
	if err := s.authorize(ctx, p, documentID); err != nil {
		return nil, err
	}
	messages, err := s.messages.ListByDocument(ctx, documentID, afterID, limit)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	return messages, nil
}

func (s *ChatService) authorize(ctx context.Context, p models.Principal, documentID int) error {
	if err := Authorize(p, ActionChat); err != nil {
		return err
	}
	_, err := s.documents.Get(ctx, p, documentID)
	return err
}

// post persists before broadcasting so a missed push is always recoverable
// from history.
func (s *ChatService) post(ctx context.Context, documentID, senderID int, kind models.PrincipalKind, name, body string) (*models.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, utils.Validationf("message body is required")
	}
	if utf8.RuneCountInString(body) > maxChatMessageLength {
		return nil, utils.Validationf("message body exceeds %d characters", maxChatMessageLength)
	}

	msg := &models.ChatMessage{
		DocumentID: documentID,
		SenderID:   senderID,
		SenderKind: kind,
		SenderName: name,
		Body:       body,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		log.Error().Err(err).Int("document_id", documentID).Msg("Failed to persist chat message")
		return nil, err
	}
	chatMessagesCounter.Inc()
	s.hub.Broadcast(documentID, msg)
	return msg, nil
}

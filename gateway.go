package main

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
)

type SourceKind int

const (
	SourceUser SourceKind = iota
	SourceGroup
	SourceRoom
)

// Source identifies where a command came from. Messages from a group
// or room share one game per chat; direct messages get a personal one.
type Source struct {
	Kind    SourceKind
	UserID  string
	GroupID string
	RoomID  string
}

// Owner returns the session key for this source.
func (s Source) Owner() string {
	switch s.Kind {
	case SourceGroup:
		return s.GroupID
	case SourceRoom:
		return s.RoomID
	default:
		return s.UserID
	}
}

// Shared reports whether the source is a multi-member chat the bot can
// be asked to leave.
func (s Source) Shared() bool {
	return s.Kind != SourceUser
}

// Outbound message payloads, shaped for the bot platform's reply API.

type TextReply struct {
	Type string `json:"type"` // "text"
	Text string `json:"text"`
}

type ImageReply struct {
	Type               string `json:"type"` // "image"
	OriginalContentURL string `json:"originalContentUrl"`
	PreviewImageURL    string `json:"previewImageUrl"`
}

func textReply(text string) TextReply {
	return TextReply{Type: "text", Text: text}
}

func imageReply(link string) ImageReply {
	return ImageReply{
		Type:               "image",
		OriginalContentURL: link,
		PreviewImageURL:    link,
	}
}

// Gateway is the messaging collaborator: deliver a reply sequence, or
// leave a shared chat.
type Gateway interface {
	Reply(ctx context.Context, replyToken string, messages []any) error
	Leave(ctx context.Context, src Source) error
}

// LineClient is the production Gateway, speaking the LINE bot API.
type LineClient struct {
	apiURL string
	token  string
	client *http.Client
}

func newLineClient(token string) *LineClient {
	return &LineClient{
		apiURL: "https://api.line.me",
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

func (l *LineClient) post(ctx context.Context, endpoint string, payload any) error {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.apiURL+endpoint, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+l.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", endpoint, resp.StatusCode)
	}

	return nil
}

func (l *LineClient) Reply(ctx context.Context, replyToken string, messages []any) error {
	return l.post(ctx, "/v2/bot/message/reply", map[string]any{
		"replyToken": replyToken,
		"messages":   messages,
	})
}

func (l *LineClient) Leave(ctx context.Context, src Source) error {
	switch src.Kind {
	case SourceGroup:
		return l.post(ctx, "/v2/bot/group/"+src.GroupID+"/leave", nil)
	case SourceRoom:
		return l.post(ctx, "/v2/bot/room/"+src.RoomID+"/leave", nil)
	default:
		return fmt.Errorf("cannot leave a 1:1 chat")
	}
}

// validateSignature checks the webhook body against the platform's
// HMAC-SHA256 signature header.
func validateSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// Inbound webhook payloads.

type webhookPayload struct {
	Events []webhookEvent `json:"events"`
}

type webhookEvent struct {
	Type       string         `json:"type"`
	ReplyToken string         `json:"replyToken"`
	Source     webhookSource  `json:"source"`
	Message    webhookMessage `json:"message"`
}

type webhookSource struct {
	Type    string `json:"type"` // "user", "group" or "room"
	UserID  string `json:"userId"`
	GroupID string `json:"groupId"`
	RoomID  string `json:"roomId"`
}

type webhookMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (s webhookSource) resolve() Source {
	src := Source{
		UserID:  s.UserID,
		GroupID: s.GroupID,
		RoomID:  s.RoomID,
	}

	switch s.Type {
	case "group":
		src.Kind = SourceGroup
	case "room":
		src.Kind = SourceRoom
	default:
		src.Kind = SourceUser
	}

	return src
}

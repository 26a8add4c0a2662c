package types

import "time"

// Profile fields the caller sends with requests that may seed or personalize
// a conversation. Profile storage itself lives with the embedding app.
type Profile struct {
	UserName string `json:"userName,omitempty"`
	UserType string `json:"userType,omitempty"`
	Language string `json:"language,omitempty"`
}

type ChatRequest struct {
	Profile
	ConversationID string `json:"conversationId,omitempty"`
	Mode           string `json:"mode,omitempty"`
	Message        string `json:"message"`
}

type ChatResponse struct {
	ConversationID string `json:"conversationId"`
	Reply          string `json:"reply"`
	Degraded       bool   `json:"degraded"`
	// Notice is shown transiently while degraded and is not stored.
	Notice string `json:"notice,omitempty"`
	Intent string `json:"intent"`
}

type ConversationSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	MessageCount int       `json:"messageCount"`
	LastMessage  string    `json:"lastMessage,omitempty"`
}

type ConversationsResponse struct {
	Mode          string                `json:"mode"`
	CurrentID     string                `json:"currentId"`
	Conversations []ConversationSummary `json:"conversations"`
}

type CreateConversationRequest struct {
	Title    string `json:"title,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Language string `json:"language,omitempty"`
}

type SwitchConversationRequest struct {
	ID   string `json:"id"`
	Mode string `json:"mode,omitempty"`
}

type SwitchConversationResponse struct {
	CurrentID string `json:"currentId"`
}

type ClassifyRequest struct {
	Message  string `json:"message"`
	Language string `json:"language,omitempty"`
}

type ClassifyResponse struct {
	Intent          string `json:"intent"`
	Language        string `json:"language"`
	NeedsDisclaimer bool   `json:"needsDisclaimer"`
	Dependents      bool   `json:"dependents"`
	Question        bool   `json:"question"`
}

type SystemPromptRequest struct {
	Profile
	Mode        string `json:"mode,omitempty"`
	CurrentDate string `json:"currentDate,omitempty"`
}

type SystemPromptResponse struct {
	System string `json:"system"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Store    string `json:"store"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

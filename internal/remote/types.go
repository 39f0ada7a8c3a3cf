package remote

import "strings"

// File is one named multipart upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// StartResponse is the start-interview reply.
type StartResponse struct {
	SessionID       string `json:"session_id" validate:"required"`
	CurrentQuestion string `json:"current_question" validate:"required"`
}

// AnswerResponse is the submit-answer reply.
type AnswerResponse struct {
	UserTranscription string `json:"user_transcription"`
	AIResponse        string `json:"ai_response,omitempty"`
	IsFinished        bool   `json:"is_finished"`
}

// Report is the final scored feedback produced at session end.
type Report struct {
	Score           int      `json:"score" validate:"min=0,max=100"`
	TechnicalScore  int      `json:"technical_score" validate:"min=0,max=100"`
	ConfidenceScore int      `json:"confidence_score" validate:"min=0,max=100"`
	Verdict         string   `json:"verdict" validate:"required"`
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
}

// Hire reports whether the verdict is one of the positive hiring outcomes.
func (r Report) Hire() bool {
	switch strings.ToLower(strings.TrimSpace(r.Verdict)) {
	case "strong hire", "hire":
		return true
	default:
		return false
	}
}

type endResponse struct {
	Message string  `json:"message,omitempty"`
	Report  *Report `json:"report" validate:"required"`
}

type apiError struct {
	Detail any `json:"detail"`
}

// Package remote talks to the interview service over multipart HTTP.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const (
	pathStart  = "/start-interview"
	pathSubmit = "/submit-answer"
	pathEnd    = "/end-interview"
	pathHealth = "/"

	requestIDHeader = "X-Request-ID"
)

// StatusError is a non-success reply from the interview service.
type StatusError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Detail)
}

// Config controls client construction.
type Config struct {
	BaseURL   string
	UserAgent string
}

// Client is the interview service API client.
type Client struct {
	http     *resty.Client
	validate *validator.Validate
	logger   *slog.Logger
}

// NewClient builds a client rooted at cfg.BaseURL. Requests are never retried.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	http := resty.New().
		SetBaseURL(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	if ua := strings.TrimSpace(cfg.UserAgent); ua != "" {
		http.SetHeader("User-Agent", ua)
	}

	return &Client{
		http:     http,
		validate: validator.New(),
		logger:   logger,
	}
}

// StartInterview uploads the resume and returns the new session and opening question.
func (c *Client) StartInterview(ctx context.Context, resume File) (StartResponse, error) {
	var out StartResponse
	req := c.request(ctx, "start-interview").
		SetMultipartField("file", resume.Name, resume.ContentType, bytes.NewReader(resume.Data)).
		SetResult(&out)

	if err := c.do(req, "start-interview", pathStart); err != nil {
		return StartResponse{}, err
	}
	if err := c.validate.Struct(out); err != nil {
		return StartResponse{}, fmt.Errorf("start-interview: invalid response: %w", err)
	}
	return out, nil
}

// SubmitAnswer uploads one recorded answer for sessionID.
func (c *Client) SubmitAnswer(ctx context.Context, sessionID string, audio File) (AnswerResponse, error) {
	var out AnswerResponse
	req := c.request(ctx, "submit-answer").
		SetMultipartFormData(map[string]string{"session_id": sessionID}).
		SetMultipartField("audio_file", audio.Name, audio.ContentType, bytes.NewReader(audio.Data)).
		SetResult(&out)

	if err := c.do(req, "submit-answer", pathSubmit); err != nil {
		return AnswerResponse{}, err
	}
	return out, nil
}

// EndInterview closes sessionID and returns its report.
func (c *Client) EndInterview(ctx context.Context, sessionID string) (Report, error) {
	var out endResponse
	req := c.request(ctx, "end-interview").
		SetMultipartFormData(map[string]string{"session_id": sessionID}).
		SetResult(&out)

	if err := c.do(req, "end-interview", pathEnd); err != nil {
		return Report{}, err
	}
	if err := c.validate.Struct(out); err != nil {
		return Report{}, fmt.Errorf("end-interview: invalid response: %w", err)
	}
	if err := c.validate.Struct(out.Report); err != nil {
		return Report{}, fmt.Errorf("end-interview: invalid report: %w", err)
	}
	return *out.Report, nil
}

// Ping checks that the service root answers with a success status.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(c.request(ctx, "ping"), "ping", pathHealth)
}

func (c *Client) request(ctx context.Context, op string) *resty.Request {
	id := uuid.NewString()
	c.logger.Debug("remote request", "op", op, "request_id", id)
	return c.http.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, id).
		SetError(&apiError{})
}

func (c *Client) do(req *resty.Request, op string, path string) error {
	method := resty.MethodPost
	if path == pathHealth {
		method = resty.MethodGet
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsError() {
		statusErr := &StatusError{Op: op, StatusCode: resp.StatusCode(), Detail: errorDetail(resp)}
		c.logger.Warn("remote request rejected",
			"op", op,
			"status", resp.StatusCode(),
			"detail", statusErr.Detail,
			"request_id", req.Header.Get(requestIDHeader),
		)
		return statusErr
	}
	return nil
}

// errorDetail extracts FastAPI-style {"detail": ...} text, falling back to the raw body.
func errorDetail(resp *resty.Response) string {
	if apiErr, ok := resp.Error().(*apiError); ok && apiErr != nil && apiErr.Detail != nil {
		switch detail := apiErr.Detail.(type) {
		case string:
			return detail
		default:
			return fmt.Sprint(detail)
		}
	}
	body := strings.TrimSpace(resp.String())
	if len(body) > 256 {
		body = body[:256]
	}
	return body
}

// IsStatus reports whether err is a StatusError with the given HTTP status.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rbright/rehearse/internal/remote"
)

type fakeService struct {
	startResp remote.StartResponse
	startErr  error

	mu        sync.Mutex
	answers   []remote.AnswerResponse
	answerErr error

	report  remote.Report
	endErr  error
	endGate chan struct{}
	hang    bool

	startCalls  atomic.Int32
	submitCalls atomic.Int32
	endCalls    atomic.Int32
	endEntered  chan struct{}

	lastAudio remote.File
}

func newFakeService() *fakeService {
	return &fakeService{
		startResp: remote.StartResponse{SessionID: "abc123", CurrentQuestion: "Tell me about yourself"},
		report: remote.Report{
			Score:           82,
			TechnicalScore:  85,
			ConfidenceScore: 75,
			Verdict:         "Hire",
			Summary:         "Solid fundamentals.",
		},
		endEntered: make(chan struct{}, 8),
	}
}

func (f *fakeService) queueAnswer(resp remote.AnswerResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, resp)
}

func (f *fakeService) StartInterview(ctx context.Context, _ remote.File) (remote.StartResponse, error) {
	f.startCalls.Add(1)
	if f.hang {
		<-ctx.Done()
		return remote.StartResponse{}, ctx.Err()
	}
	return f.startResp, f.startErr
}

func (f *fakeService) SubmitAnswer(ctx context.Context, sessionID string, audio remote.File) (remote.AnswerResponse, error) {
	f.submitCalls.Add(1)
	if sessionID != f.startResp.SessionID {
		return remote.AnswerResponse{}, errors.New("unexpected session id " + sessionID)
	}
	if f.hang {
		<-ctx.Done()
		return remote.AnswerResponse{}, ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastAudio = audio
	if f.answerErr != nil {
		return remote.AnswerResponse{}, f.answerErr
	}
	if len(f.answers) == 0 {
		return remote.AnswerResponse{}, errors.New("no queued answer")
	}
	resp := f.answers[0]
	f.answers = f.answers[1:]
	return resp, nil
}

func (f *fakeService) EndInterview(ctx context.Context, _ string) (remote.Report, error) {
	f.endCalls.Add(1)
	f.endEntered <- struct{}{}
	if f.endGate != nil {
		select {
		case <-f.endGate:
		case <-ctx.Done():
			return remote.Report{}, ctx.Err()
		}
	}
	if f.endErr != nil {
		return remote.Report{}, f.endErr
	}
	return f.report, nil
}

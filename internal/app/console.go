package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/rbright/rehearse/internal/audio"
	"github.com/rbright/rehearse/internal/cue"
	"github.com/rbright/rehearse/internal/fsm"
	"github.com/rbright/rehearse/internal/ipc"
	"github.com/rbright/rehearse/internal/session"
	"github.com/rbright/rehearse/internal/transcript"
)

const commandQuit = "quit"

// consoleAliases maps short console input to commands.
var consoleAliases = map[string]string{
	"r":    ipc.CommandRecord,
	"s":    ipc.CommandStop,
	"c":    ipc.CommandCancel,
	"e":    ipc.CommandEnd,
	"t":    ipc.CommandTranscript,
	"q":    commandQuit,
	"exit": commandQuit,
}

// console drives one interview from terminal input and forwarded IPC commands.
type console struct {
	ctx        context.Context
	controller *session.Controller
	recorder   *audio.Recorder
	cues       *cue.Player
	logger     *slog.Logger

	outMu sync.Mutex
	out   io.Writer

	pending sync.WaitGroup
	ended   chan struct{}
	endOnce sync.Once
}

func newConsole(ctx context.Context, controller *session.Controller, out io.Writer, logger *slog.Logger) *console {
	return &console{
		ctx:        ctx,
		controller: controller,
		logger:     logger,
		out:        out,
		ended:      make(chan struct{}),
	}
}

// Handle serves forwarded IPC commands.
func (c *console) Handle(_ context.Context, req ipc.Request) ipc.Response {
	return c.execute(req.Command)
}

// Run reads commands from in until quit, cancellation, or the interview ends.
// It reports whether the user asked to quit.
func (c *console) Run(in io.Reader) bool {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-c.ended:
				return
			case <-c.ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-c.ctx.Done():
			return false
		case <-c.ended:
			return false
		case line, ok := <-lines:
			if !ok {
				// Input closed; forwarded commands can still drive the interview.
				lines = nil
				continue
			}
			command := normalizeCommand(line)
			if command == "" {
				continue
			}
			if command == commandQuit {
				return true
			}
			resp := c.execute(command)
			switch {
			case !resp.OK:
				c.printf("error: %s\n", resp.Error)
			case command == ipc.CommandStatus:
				c.printf("%s\n", resp.State())
			case resp.Message != "":
				c.printf("%s\n", resp.Message)
			}
		}
	}
}

func normalizeCommand(line string) string {
	command := strings.ToLower(strings.TrimSpace(line))
	if alias, ok := consoleAliases[command]; ok {
		return alias
	}
	return command
}

// execute runs one command and returns the post-command state.
func (c *console) execute(command string) ipc.Response {
	var (
		message string
		err     error
	)

	switch command {
	case ipc.CommandRecord:
		message, err = c.toggleRecording()
	case ipc.CommandStop:
		message, err = c.stopRecording()
	case ipc.CommandCancel:
		message, err = c.cancelRecording()
	case ipc.CommandEnd:
		message, err = c.requestEnd()
	case ipc.CommandStatus:
	case ipc.CommandTranscript:
		message = renderTranscript(c.controller.Transcript())
	default:
		err = fmt.Errorf("unknown command %q", command)
	}

	resp := ipc.Response{
		OK:      err == nil,
		Phase:   string(c.controller.Phase()),
		Capture: string(c.recorder.Status()),
		Message: message,
	}
	if err != nil {
		resp.Error = err.Error()
		c.logger.Warn("command rejected", "command", command, "error", err.Error())
	}
	return resp
}

func (c *console) toggleRecording() (string, error) {
	if c.recorder.Status() == audio.StatusRecording {
		return c.stopRecording()
	}
	if phase := c.controller.Phase(); phase != fsm.PhaseActive {
		return "", fmt.Errorf("interview is %s", phase)
	}
	if err := c.recorder.Start(c.ctx); err != nil {
		return "", err
	}
	if c.recorder.Status() != audio.StatusRecording {
		return "", errors.New("previous answer is still being processed")
	}
	c.cues.Play(cue.Start)
	return "recording; stop to submit your answer", nil
}

func (c *console) stopRecording() (string, error) {
	if c.recorder.Status() != audio.StatusRecording {
		return "", errors.New("not recording")
	}
	c.recorder.Stop()
	c.cues.Play(cue.Stop)
	return "answer captured; submitting", nil
}

func (c *console) cancelRecording() (string, error) {
	if c.recorder.Status() != audio.StatusRecording {
		return "", errors.New("not recording")
	}
	if err := c.recorder.Cancel(); err != nil {
		return "", err
	}
	c.cues.Play(cue.Cancel)
	return "recording discarded", nil
}

// requestEnd ends the interview in the background so forwarded commands return promptly.
func (c *console) requestEnd() (string, error) {
	switch phase := c.controller.Phase(); phase {
	case fsm.PhaseEnded:
		return "interview already ended", nil
	case fsm.PhaseActive:
	default:
		return "", fmt.Errorf("interview is %s", phase)
	}
	if c.recorder.Status() == audio.StatusRecording {
		if err := c.recorder.Cancel(); err != nil {
			c.logger.Warn("discard recording before end failed", "error", err.Error())
		}
	}

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		if _, err := c.controller.End(c.ctx); err != nil {
			c.printError("end interview", err)
			return
		}
		c.finish()
	}()
	return "ending interview; generating report", nil
}

// onAnswer receives each handled recording.
func (c *console) onAnswer(result session.AnswerResult, err error) {
	if result.Transcription != "" {
		c.printf("You: %s\n", result.Transcription)
	}
	if err != nil {
		if result.Finished {
			c.printError("generate report", err)
			c.printf("run end to retry\n")
			return
		}
		c.printError("submit answer", err)
		return
	}
	if result.FollowUp != "" {
		c.printf("Interviewer: %s\n", result.FollowUp)
	}
	if result.Finished {
		c.printf("The interviewer has wrapped up.\n")
		c.finish()
	}
}

// wait blocks until background end requests settle.
func (c *console) wait() {
	c.pending.Wait()
}

func (c *console) finish() {
	c.endOnce.Do(func() {
		c.cues.Play(cue.Complete)
		close(c.ended)
	})
}

func (c *console) printError(op string, err error) {
	if session.IsUserFacing(err) {
		c.logger.Warn(op+" failed", "error", err.Error())
	} else {
		c.logger.Error(op+" failed", "error", err.Error())
	}
	switch {
	case errors.Is(err, audio.ErrNoAudio):
		c.printf("error: no audio captured; record your answer again\n")
	case errors.Is(err, session.ErrContractViolation):
		c.printf("error: %s: internal error; see log for details\n", op)
	default:
		c.printf("error: %s: %v\n", op, err)
	}
}

func (c *console) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func renderTranscript(turns []transcript.Turn) string {
	if len(turns) == 0 {
		return "(no turns yet)"
	}
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		speaker := "Interviewer"
		if turn.Role == transcript.RoleUser {
			speaker = "You"
		}
		content := turn.Content
		if turn.Pending {
			content += " (pending)"
		}
		fmt.Fprintf(&b, "%s: %s", speaker, content)
	}
	return b.String()
}

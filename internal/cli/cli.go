// Package cli parses the rehearse command line.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

// Command is one top-level rehearse command.
type Command string

const (
	CommandInterview Command = "interview"
	CommandRecord    Command = "record"
	CommandStop      Command = "stop"
	CommandCancel    Command = "cancel"
	CommandEnd       Command = "end"
	CommandStatus    Command = "status"
	CommandDevices   Command = "devices"
	CommandDoctor    Command = "doctor"
	CommandVersion   Command = "version"
	CommandHelp      Command = "help"
)

// positionalArgs lists how many operands each command takes.
var positionalArgs = map[Command]int{
	CommandInterview: 1,
	CommandRecord:    0,
	CommandStop:      0,
	CommandCancel:    0,
	CommandEnd:       0,
	CommandStatus:    0,
	CommandDevices:   0,
	CommandDoctor:    0,
	CommandVersion:   0,
	CommandHelp:      0,
}

// Parsed is the result of Parse.
type Parsed struct {
	Command    Command
	ConfigPath string
	ShowHelp   bool
	// ResumePath is the interview command's resume file.
	ResumePath string
}

// Parse reads global flags followed by one command and its operands.
func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			want, ok := positionalArgs[cmd]
			if !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			operands := args[i+1:]
			if len(operands) > want {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
			if len(operands) < want {
				return Parsed{}, fmt.Errorf("command %q requires a resume path", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			if cmd == CommandInterview {
				parsed.ResumePath = operands[0]
				if strings.TrimSpace(parsed.ResumePath) == "" {
					return Parsed{}, fmt.Errorf("command %q requires a resume path", arg)
				}
			}
			return parsed, nil
		}
	}

	return parsed, nil
}

// HelpText returns usage for binaryName.
func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command>

Commands:
  interview RESUME  Upload a resume and run a voice interview in this terminal
  record            Start recording an answer, or stop and submit when already recording
  stop              Stop recording and submit the answer
  cancel            Discard the answer being recorded
  end               End the interview and print the report
  status            Print interview phase and capture state
  devices           List available input devices
  doctor            Run configuration and environment checks
  version           Print version information
  help              Show this help

record, stop, cancel, end, and status are forwarded to the running interview.

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/rehearse/config.jsonc)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}

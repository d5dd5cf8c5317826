package repl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/google/shlex"

	"compliflow/internal/cli/command"
	"compliflow/internal/cli/httpclient"
	"compliflow/internal/cli/state"
)

// Session holds REPL state.
type Session struct {
	client     *httpclient.Client
	commands   map[string]command.Command
	tokenState *state.TokenState
	statePath  string
	prettyJSON bool
}

func New(client *httpclient.Client, commands map[string]command.Command, tokenState *state.TokenState, statePath string, prettyJSON bool) *Session {
	return &Session{
		client:     client,
		commands:   commands,
		tokenState: tokenState,
		statePath:  statePath,
		prettyJSON: prettyJSON,
	}
}

func (s *Session) Run(ctx context.Context) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "compliflow> ",
		HistoryFile:     historyPath(),
		InterruptPrompt: "^C",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start repl: %v\n", err)
		return
	}
	defer func() { _ = rl.Close() }()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			s.printLine("bye")
			return
		}
		if err != nil {
			s.printLine("read input failed: %v", err)
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			s.printLine("bye")
			return
		}
		if s.handleSystemCommand(line) {
			continue
		}
		if err := s.handleCommand(ctx, rl, line); err != nil {
			s.printLine("error: %v", err)
		}
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.compliflow_history"
}

func (s *Session) handleSystemCommand(line string) bool {
	if line == "help" {
		s.printHelp()
		return true
	}
	if strings.HasPrefix(line, "set ") {
		s.handleSet(strings.TrimSpace(strings.TrimPrefix(line, "set ")))
		return true
	}
	if strings.HasPrefix(line, "show ") {
		s.handleShow(strings.TrimSpace(strings.TrimPrefix(line, "show ")))
		return true
	}
	return false
}

func (s *Session) handleSet(args string) {
	parts := strings.Fields(args)
	if len(parts) == 0 {
		s.printLine("usage: set base|token|timeout")
		return
	}
	switch parts[0] {
	case "base":
		if len(parts) < 2 {
			s.printLine("usage: set base http://127.0.0.1:8080")
			return
		}
		s.client.SetBaseURL(parts[1])
		s.printLine("base set to %s", parts[1])
	case "timeout":
		if len(parts) < 2 {
			s.printLine("usage: set timeout 10s")
			return
		}
		dur, err := time.ParseDuration(parts[1])
		if err != nil {
			s.printLine("invalid duration: %v", err)
			return
		}
		s.client.SetTimeout(dur)
		s.printLine("timeout set to %s", dur)
	case "token":
		if len(parts) < 2 {
			s.printLine("usage: set token <access_token>")
			return
		}
		s.tokenState.AccessToken = parts[1]
		if err := state.Save(s.statePath, *s.tokenState); err != nil {
			s.printLine("save token failed: %v", err)
			return
		}
		s.printLine("token updated")
	default:
		s.printLine("unknown set command")
	}
}

func (s *Session) handleShow(args string) {
	switch args {
	case "token":
		if s.tokenState.AccessToken == "" {
			s.printLine("token: <empty>")
			return
		}
		token := s.tokenState.AccessToken
		if len(token) > 12 {
			token = token[:6] + "..." + token[len(token)-4:]
		}
		s.printLine("token: %s", token)
	case "config":
		s.printLine("tokenStatePath: %s", s.statePath)
	default:
		s.printLine("usage: show token|config")
	}
}

func (s *Session) handleCommand(ctx context.Context, rl *readline.Instance, line string) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse command failed: %w", err)
	}
	if len(tokens) < 2 {
		return fmt.Errorf("invalid command, use: <service> <action> key=value ...")
	}
	key := fmt.Sprintf("%s %s", tokens[0], tokens[1])
	cmd, ok := s.commands[key]
	if !ok {
		return fmt.Errorf("unknown command: %s", key)
	}

	params := command.Params{}
	for _, token := range tokens[2:] {
		parts := strings.SplitN(token, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid param: %s", token)
		}
		params.Set(parts[0], parts[1])
	}
	params.Canonicalize(cmd.Fields)

	if err := s.promptMissing(rl, cmd, params); err != nil {
		return err
	}
	req, err := command.BuildRequest(cmd, params)
	if err != nil {
		return err
	}

	var resp httpclient.ResponseInfo
	if req.FileField != "" {
		resp, err = s.client.DoMultipart(ctx, req.Method, req.Path, req.FormFields, req.FileField, req.FilePath)
	} else {
		resp, err = s.client.Do(ctx, req.Method, req.Path, req.Body)
	}
	if err != nil {
		return err
	}
	s.renderResponse(resp)
	return nil
}

func (s *Session) promptMissing(rl *readline.Instance, cmd command.Command, params command.Params) error {
	for _, field := range cmd.Fields {
		if !field.Required || params.Get(field.Name) != "" {
			continue
		}
		rl.SetPrompt(field.Prompt + ": ")
		line, err := rl.Readline()
		rl.SetPrompt("compliflow> ")
		if err != nil {
			return fmt.Errorf("read input failed: %w", err)
		}
		params.Set(field.Name, strings.TrimSpace(line))
	}
	return nil
}

func (s *Session) renderResponse(resp httpclient.ResponseInfo) {
	s.printLine("HTTP %d (%s)", resp.StatusCode, resp.Duration)
	if len(resp.Body) == 0 {
		return
	}
	if s.prettyJSON {
		var raw interface{}
		if err := json.Unmarshal(resp.Body, &raw); err == nil {
			formatted, _ := json.MarshalIndent(raw, "", "  ")
			s.printLine("%s", string(formatted))
			return
		}
	}
	s.printLine("%s", string(resp.Body))
}

func (s *Session) printHelp() {
	s.printLine("usage: <service> <action> key=value ...")
	s.printLine("system: help | exit | set base|timeout|token | show token|config")
	s.printLine("examples:")
	s.printLine("  submission create title=\"Q3 Whitepaper\" type=Whitepaper source=\"Corporate Marketing\" pages=12 content=./draft.pdf")
	s.printLine("  queue list status=Pending")
	s.printLine("  queue assign id=SUB-2026-0001 reviewer=\"Amanda H.\"")
	s.printLine("  metrics table months=2026-07,2026-08")
	s.printLine("  requirements list source=\"Third Party\"")
}

func (s *Session) printLine(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

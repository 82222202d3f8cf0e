package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"sort"
	"syscall"

	"codetree/internal/codetree"
	"codetree/internal/tools"
	"codetree/internal/types"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// maxRequestBytes bounds one JSON line; update payloads can hold whole files.
const maxRequestBytes = 16 * 1024 * 1024

// sessionRequest is one line of session input.
type sessionRequest struct {
	ID   any            `json:"id,omitempty"`
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// sessionResponse is one line of session output. Errors are reported as
// text; a failed request never ends the session.
type sessionResponse struct {
	ID        any    `json:"id,omitempty"`
	RequestID string `json:"request_id"`
	OK        bool   `json:"ok"`
	Result    string `json:"result,omitempty"`
	Error     string `json:"error,omitempty"`
}

// toolInfo describes a tool for the list_tools request.
type toolInfo struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Mutates     bool             `json:"mutates"`
	Schema      tools.ToolSchema `json:"schema"`
}

// sessionCmd serves tool calls over stdin/stdout, one JSON object per line.
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Serve tool calls as JSON lines on stdin/stdout",
	Long: `Opens the project once and answers one JSON request per input line:

  {"id": 1, "tool": "expand", "args": {"label": "0"}}

with one JSON response per output line:

  {"id": 1, "request_id": "...", "ok": true, "result": "0 project/ ..."}

The special tool "list_tools" returns the tool schemas, optionally limited
by {"category": "/browse"} or {"category": "/edit"}. Modified files are
only written by an explicit write_changes call.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, registry, err := openProject(ctx)
		if err != nil {
			return err
		}
		defer p.Close()
		return serveSession(ctx, p, registry, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// serveSession answers requests from in until EOF or cancellation. Requests
// run one at a time, in order.
func serveSession(ctx context.Context, p *codetree.Project, registry *tools.Registry, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxRequestBytes)
	enc := json.NewEncoder(out)

	served := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			break
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := handleRequest(ctx, registry, line)
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
		served++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}

	if pending := p.Pending(); len(pending) > 0 {
		logger.Warn("session ended with unwritten changes", zap.Int("files", len(pending)))
	}
	logger.Debug("session closed", zap.Int("requests", served))
	return nil
}

func handleRequest(ctx context.Context, registry *tools.Registry, line []byte) sessionResponse {
	reqID := uuid.NewString()
	var req sessionRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return sessionResponse{RequestID: reqID, Error: fmt.Sprintf("invalid request: %v", err)}
	}
	resp := sessionResponse{ID: req.ID, RequestID: reqID}

	if req.Tool == "list_tools" {
		category := tools.ToolCategory(types.ArgString(req.Args, "category"))
		data, err := json.Marshal(listTools(registry, category))
		if err != nil {
			resp.Error = err.Error()
			return resp
		}
		resp.OK = true
		resp.Result = string(data)
		return resp
	}

	res, err := registry.Execute(tools.WithRequestID(ctx, reqID), req.Tool, req.Args)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.OK = true
	resp.Result = res.Result
	return resp
}

// listTools describes the tools of category (every tool when empty), sorted
// by name.
func listTools(registry *tools.Registry, category tools.ToolCategory) []toolInfo {
	selected := registry.ByCategory(category)
	sort.Slice(selected, func(i, j int) bool { return selected[i].Name < selected[j].Name })
	infos := make([]toolInfo, 0, len(selected))
	for _, t := range selected {
		infos = append(infos, toolInfo{
			Name:        t.Name,
			Description: t.Description,
			Category:    string(t.Category),
			Mutates:     t.Mutates,
			Schema:      t.Schema,
		})
	}
	return infos
}

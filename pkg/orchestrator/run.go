package orchestrator

import (
	"context"

	"github.com/google/uuid"

	providererrors "github.com/corvidai/gollm/pkg/provider/errors"
	"github.com/corvidai/gollm/pkg/types"
)

// Generator is the minimal surface Run needs from a chat client: one
// non-streaming call per step. pkg/client.Client satisfies this directly.
type Generator interface {
	Generate(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error)
}

// PrepareStep lets a caller rewrite the request before each step (e.g.
// pruning history, injecting a system reminder).
type PrepareStep func(ctx context.Context, step int, req types.ChatRequest) (types.ChatRequest, error)

// OnStepFinish is called after each step completes, before the stop
// condition is evaluated.
type OnStepFinish func(ctx context.Context, step Step)

// ApprovalDecision is OnToolApproval's verdict for a single pending tool
// call.
type ApprovalDecision int

const (
	// ApprovalApprove executes the call unchanged.
	ApprovalApprove ApprovalDecision = iota
	// ApprovalModify executes the call with ToolApproval.Arguments in place
	// of the model's original arguments.
	ApprovalModify
	// ApprovalDeny skips execution entirely; a ToolResult carrying
	// ToolApproval.Reason as its Error is synthesized instead.
	ApprovalDeny
)

// ToolApproval is OnToolApproval's response for one pending tool call.
type ToolApproval struct {
	Decision  ApprovalDecision
	Arguments map[string]any
	Reason    string
}

// OnToolApproval, when set, is consulted before every tool call executes,
// letting a caller approve, rewrite, or deny it (e.g. a human-in-the-loop
// confirmation step for destructive tools).
type OnToolApproval func(ctx context.Context, call types.ToolCall) (ToolApproval, error)

// Options configures one Run call.
type Options struct {
	Tools          []types.Tool
	StopWhen       StopCondition
	PrepareStep    PrepareStep
	OnStepFinish   OnStepFinish
	OnToolApproval OnToolApproval
}

// Result is Run's final output: the full step history and the last
// response produced.
type Result struct {
	Steps    []Step
	Response types.ChatResponse
}

// Run drives the multi-step tool-calling loop: call the model, execute any
// tool calls it requested, append the results, and repeat until opts.StopWhen
// fires. Grounded verbatim on the teacher's ai/generate.go orchestration
// loop, generalized off its single monolithic GenerateText entry point into
// a reusable Run usable by any Generator.
func Run(ctx context.Context, gen Generator, req types.ChatRequest, opts Options) (Result, error) {
	history := append([]types.ChatMessage(nil), req.Messages...)
	toolsByName := make(map[string]types.Tool, len(opts.Tools))
	for _, t := range opts.Tools {
		toolsByName[t.Name] = t
	}

	stopWhen := opts.StopWhen
	if stopWhen == nil {
		stopWhen = StepCountIs(1)
	}

	var steps []Step
	var lastResponse types.ChatResponse

	for {
		stepReq := req
		stepReq.Messages = history
		stepReq.Tools = opts.Tools

		if opts.PrepareStep != nil {
			var err error
			stepReq, err = opts.PrepareStep(ctx, len(steps), stepReq)
			if err != nil {
				return Result{Steps: steps}, err
			}
		}

		resp, err := gen.Generate(ctx, stepReq)
		if err != nil {
			return Result{Steps: steps}, err
		}
		lastResponse = resp

		history = append(history, types.ChatMessage{Role: types.RoleAssistant, Content: resp.Content})

		calls := resp.ToolCalls()
		var results []types.ToolResult
		if len(calls) > 0 {
			results, err = executeToolCalls(ctx, calls, toolsByName, opts.OnToolApproval)
			if err != nil {
				return Result{Steps: steps, Response: resp}, err
			}

			parts := make([]types.ToolResultPart, 0, len(results))
			for _, r := range results {
				parts = append(parts, types.ToolResultPart{
					ToolCallID: r.ToolCallID,
					ToolName:   r.ToolName,
					Result:     r.Result,
					IsError:    r.Error != "",
				})
			}
			toolMsg, err := types.NewToolMessage(history, parts...)
			if err != nil {
				return Result{Steps: steps, Response: resp}, err
			}
			history = append(history, toolMsg)
		}

		step := Step{Response: resp, ToolResults: results}
		steps = append(steps, step)
		if opts.OnStepFinish != nil {
			opts.OnStepFinish(ctx, step)
		}

		state := State{Steps: steps, Messages: history, Usage: resp.Usage}
		if reason := stopWhen(state); reason != "" {
			// The step that just completed still carried tool calls: the
			// loop would normally have fed their results back for another
			// generation round, but the stop condition cut it short. The
			// raw response is a tool-calling turn, not a final answer, so
			// synthesize a clean text-only response instead of returning it.
			if len(calls) > 0 {
				lastResponse = synthesizeFinalResponse(resp)
			}
			break
		}
		if len(calls) == 0 {
			break
		}
	}

	return Result{Steps: steps, Response: lastResponse}, nil
}

// synthesizeFinalResponse builds the response Run returns when the step
// limit is reached while the last step still carried tool calls: a
// freshly-ID'd, text-only response built from the last assistant text.
func synthesizeFinalResponse(resp types.ChatResponse) types.ChatResponse {
	return types.ChatResponse{
		ID:           uuid.NewString(),
		Content:      []types.ContentPart{types.TextPart{Text: resp.Text()}},
		Model:        resp.Model,
		Usage:        resp.Usage,
		FinishReason: types.FinishStop,
	}
}

func executeToolCalls(ctx context.Context, calls []types.ToolCall, toolsByName map[string]types.Tool, onApproval OnToolApproval) ([]types.ToolResult, error) {
	results := make([]types.ToolResult, 0, len(calls))
	for _, call := range calls {
		if onApproval != nil {
			approval, err := onApproval(ctx, call)
			if err != nil {
				return nil, err
			}
			if approval.Decision == ApprovalDeny {
				reason := approval.Reason
				if reason == "" {
					reason = "tool call denied"
				}
				results = append(results, types.ToolResult{ToolCallID: call.ID, ToolName: call.ToolName, Error: reason})
				continue
			}
			if approval.Decision == ApprovalModify && approval.Arguments != nil {
				call.Arguments = approval.Arguments
			}
		}

		tool, ok := toolsByName[call.ToolName]
		if !ok || tool.Execute == nil {
			results = append(results, types.ToolResult{
				ToolCallID: call.ID,
				ToolName:   call.ToolName,
				Error:      "no executor registered for tool",
			})
			continue
		}

		out, err := tool.Execute(ctx, call)
		if err != nil {
			wrapped := providererrors.NewToolExecutionError(call.ToolName, call.ID, err.Error(), err)
			results = append(results, types.ToolResult{ToolCallID: call.ID, ToolName: call.ToolName, Error: wrapped.Error()})
			continue
		}
		results = append(results, out)
	}
	return results, nil
}

package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidai/gollm/pkg/types"
)

// scriptedGenerator returns one canned response per call, in order.
type scriptedGenerator struct {
	responses []types.ChatResponse
	errs      []error
	calls     int
}

func (g *scriptedGenerator) Generate(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error) {
	i := g.calls
	g.calls++
	var err error
	if i < len(g.errs) {
		err = g.errs[i]
	}
	return g.responses[i], err
}

func toolCallResponse(toolName, callID string) types.ChatResponse {
	return types.ChatResponse{
		Content: []types.ContentPart{
			types.ToolCallPart{ToolCallID: callID, ToolName: toolName, Arguments: map[string]any{"q": "go"}},
		},
	}
}

func textResponse(text string) types.ChatResponse {
	return types.ChatResponse{Content: []types.ContentPart{types.TextPart{Text: text}}}
}

func TestRun_SingleStepWithNoTools(t *testing.T) {
	gen := &scriptedGenerator{responses: []types.ChatResponse{textResponse("hello")}}

	result, err := Run(context.Background(), gen, types.ChatRequest{
		Messages: []types.ChatMessage{types.NewTextMessage(types.RoleUser, "hi")},
	}, Options{})

	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "hello", result.Response.Text())
	assert.Len(t, result.Steps, 1)
}

func TestRun_ExecutesToolCallAndFeedsResultBack(t *testing.T) {
	executed := false
	weatherTool := types.Tool{
		Name: "get_weather",
		Execute: func(_ context.Context, call types.ToolCall) (types.ToolResult, error) {
			executed = true
			return types.ToolResult{ToolCallID: call.ID, ToolName: call.ToolName, Result: "sunny"}, nil
		},
	}

	gen := &scriptedGenerator{responses: []types.ChatResponse{
		toolCallResponse("get_weather", "call-1"),
		textResponse("it is sunny"),
	}}

	result, err := Run(context.Background(), gen, types.ChatRequest{
		Messages: []types.ChatMessage{types.NewTextMessage(types.RoleUser, "weather?")},
	}, Options{Tools: []types.Tool{weatherTool}, StopWhen: HasTextResponse()})

	require.NoError(t, err)
	assert.True(t, executed)
	assert.Equal(t, 2, gen.calls)
	assert.Equal(t, "it is sunny", result.Response.Text())
	require.Len(t, result.Steps, 2)
	require.Len(t, result.Steps[0].ToolResults, 1)
	assert.Equal(t, "sunny", result.Steps[0].ToolResults[0].Result)
}

func TestRun_UnregisteredToolProducesErrorResult(t *testing.T) {
	gen := &scriptedGenerator{responses: []types.ChatResponse{
		toolCallResponse("unknown_tool", "call-1"),
		textResponse("done"),
	}}

	result, err := Run(context.Background(), gen, types.ChatRequest{
		Messages: []types.ChatMessage{types.NewTextMessage(types.RoleUser, "hi")},
	}, Options{StopWhen: HasTextResponse()})

	require.NoError(t, err)
	require.Len(t, result.Steps[0].ToolResults, 1)
	assert.Equal(t, "no executor registered for tool", result.Steps[0].ToolResults[0].Error)
}

func TestRun_ToolExecutionErrorIsWrappedNotFatal(t *testing.T) {
	failingTool := types.Tool{
		Name: "flaky",
		Execute: func(context.Context, types.ToolCall) (types.ToolResult, error) {
			return types.ToolResult{}, errors.New("network unreachable")
		},
	}

	gen := &scriptedGenerator{responses: []types.ChatResponse{
		toolCallResponse("flaky", "call-1"),
		textResponse("recovered"),
	}}

	result, err := Run(context.Background(), gen, types.ChatRequest{
		Messages: []types.ChatMessage{types.NewTextMessage(types.RoleUser, "hi")},
	}, Options{Tools: []types.Tool{failingTool}, StopWhen: HasTextResponse()})

	require.NoError(t, err)
	require.Len(t, result.Steps[0].ToolResults, 1)
	assert.Contains(t, result.Steps[0].ToolResults[0].Error, "network unreachable")
}

func TestRun_StopsWhenNoToolCallsEvenWithoutExplicitStopWhen(t *testing.T) {
	gen := &scriptedGenerator{responses: []types.ChatResponse{textResponse("final")}}

	result, err := Run(context.Background(), gen, types.ChatRequest{
		Messages: []types.ChatMessage{types.NewTextMessage(types.RoleUser, "hi")},
	}, Options{StopWhen: StepCountIs(100)})

	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls, "loop should stop once a step has no tool calls")
	assert.Len(t, result.Steps, 1)
}

func TestRun_PropagatesGenerateError(t *testing.T) {
	wantErr := errors.New("provider unavailable")
	gen := &scriptedGenerator{responses: []types.ChatResponse{{}}, errs: []error{wantErr}}

	_, err := Run(context.Background(), gen, types.ChatRequest{}, Options{})
	assert.ErrorIs(t, err, wantErr)
}

func TestRun_PrepareStepCanRewriteRequest(t *testing.T) {
	gen := &scriptedGenerator{responses: []types.ChatResponse{textResponse("ok")}}
	var sawStep int

	_, err := Run(context.Background(), gen, types.ChatRequest{}, Options{
		PrepareStep: func(_ context.Context, step int, req types.ChatRequest) (types.ChatRequest, error) {
			sawStep = step
			return req, nil
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, sawStep)
}

func TestRun_PrepareStepErrorAbortsRun(t *testing.T) {
	gen := &scriptedGenerator{responses: []types.ChatResponse{textResponse("unreached")}}
	wantErr := errors.New("prepare failed")

	_, err := Run(context.Background(), gen, types.ChatRequest{}, Options{
		PrepareStep: func(context.Context, int, types.ChatRequest) (types.ChatRequest, error) {
			return types.ChatRequest{}, wantErr
		},
	})

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 0, gen.calls)
}

func TestRun_OnStepFinishCalledAfterEachStep(t *testing.T) {
	gen := &scriptedGenerator{responses: []types.ChatResponse{
		toolCallResponse("get_weather", "call-1"),
		textResponse("done"),
	}}
	weatherTool := types.Tool{
		Name: "get_weather",
		Execute: func(_ context.Context, call types.ToolCall) (types.ToolResult, error) {
			return types.ToolResult{ToolCallID: call.ID, ToolName: call.ToolName, Result: "sunny"}, nil
		},
	}

	var finished []Step
	_, err := Run(context.Background(), gen, types.ChatRequest{}, Options{
		Tools:    []types.Tool{weatherTool},
		StopWhen: HasTextResponse(),
		OnStepFinish: func(_ context.Context, step Step) {
			finished = append(finished, step)
		},
	})

	require.NoError(t, err)
	assert.Len(t, finished, 2)
}

func TestRun_OnToolApproval_DenyProducesErrorResultWithoutExecuting(t *testing.T) {
	executed := false
	weatherTool := types.Tool{
		Name: "get_weather",
		Execute: func(_ context.Context, call types.ToolCall) (types.ToolResult, error) {
			executed = true
			return types.ToolResult{ToolCallID: call.ID, ToolName: call.ToolName, Result: "sunny"}, nil
		},
	}
	gen := &scriptedGenerator{responses: []types.ChatResponse{
		toolCallResponse("get_weather", "call-1"),
		textResponse("done"),
	}}

	result, err := Run(context.Background(), gen, types.ChatRequest{}, Options{
		Tools:    []types.Tool{weatherTool},
		StopWhen: HasTextResponse(),
		OnToolApproval: func(_ context.Context, call types.ToolCall) (ToolApproval, error) {
			return ToolApproval{Decision: ApprovalDeny, Reason: "not allowed"}, nil
		},
	})

	require.NoError(t, err)
	assert.False(t, executed)
	require.Len(t, result.Steps[0].ToolResults, 1)
	assert.Equal(t, "not allowed", result.Steps[0].ToolResults[0].Error)
}

func TestRun_OnToolApproval_ModifyRewritesArgumentsBeforeExecuting(t *testing.T) {
	var gotArgs map[string]any
	echoTool := types.Tool{
		Name: "echo",
		Execute: func(_ context.Context, call types.ToolCall) (types.ToolResult, error) {
			gotArgs = call.Arguments
			return types.ToolResult{ToolCallID: call.ID, ToolName: call.ToolName, Result: "ok"}, nil
		},
	}
	gen := &scriptedGenerator{responses: []types.ChatResponse{
		toolCallResponse("echo", "call-1"),
		textResponse("done"),
	}}

	_, err := Run(context.Background(), gen, types.ChatRequest{}, Options{
		Tools:    []types.Tool{echoTool},
		StopWhen: HasTextResponse(),
		OnToolApproval: func(_ context.Context, call types.ToolCall) (ToolApproval, error) {
			return ToolApproval{Decision: ApprovalModify, Arguments: map[string]any{"q": "rewritten"}}, nil
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "rewritten", gotArgs["q"])
}

func TestRun_OnToolApproval_ApproveExecutesUnchanged(t *testing.T) {
	executed := false
	weatherTool := types.Tool{
		Name: "get_weather",
		Execute: func(_ context.Context, call types.ToolCall) (types.ToolResult, error) {
			executed = true
			return types.ToolResult{ToolCallID: call.ID, ToolName: call.ToolName, Result: "sunny"}, nil
		},
	}
	gen := &scriptedGenerator{responses: []types.ChatResponse{
		toolCallResponse("get_weather", "call-1"),
		textResponse("done"),
	}}

	_, err := Run(context.Background(), gen, types.ChatRequest{}, Options{
		Tools:    []types.Tool{weatherTool},
		StopWhen: HasTextResponse(),
		OnToolApproval: func(_ context.Context, call types.ToolCall) (ToolApproval, error) {
			return ToolApproval{Decision: ApprovalApprove}, nil
		},
	})

	require.NoError(t, err)
	assert.True(t, executed)
}

func TestRun_OnToolApproval_ErrorAbortsRun(t *testing.T) {
	weatherTool := types.Tool{
		Name: "get_weather",
		Execute: func(_ context.Context, call types.ToolCall) (types.ToolResult, error) {
			return types.ToolResult{ToolCallID: call.ID, ToolName: call.ToolName, Result: "sunny"}, nil
		},
	}
	wantErr := errors.New("approval service unavailable")
	gen := &scriptedGenerator{responses: []types.ChatResponse{toolCallResponse("get_weather", "call-1")}}

	_, err := Run(context.Background(), gen, types.ChatRequest{}, Options{
		Tools: []types.Tool{weatherTool},
		OnToolApproval: func(_ context.Context, call types.ToolCall) (ToolApproval, error) {
			return ToolApproval{}, wantErr
		},
	})

	assert.ErrorIs(t, err, wantErr)
}

func TestRun_SynthesizesFinalTextResponseWhenStepLimitHitWithPendingToolCalls(t *testing.T) {
	weatherTool := types.Tool{
		Name: "get_weather",
		Execute: func(_ context.Context, call types.ToolCall) (types.ToolResult, error) {
			return types.ToolResult{ToolCallID: call.ID, ToolName: call.ToolName, Result: "sunny"}, nil
		},
	}
	gen := &scriptedGenerator{responses: []types.ChatResponse{toolCallResponse("get_weather", "call-1")}}

	result, err := Run(context.Background(), gen, types.ChatRequest{}, Options{
		Tools:    []types.Tool{weatherTool},
		StopWhen: StepCountIs(1),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
	assert.Empty(t, result.Response.ToolCalls(), "the synthesized response must be text-only, not a raw tool-calling turn")
	assert.NotEmpty(t, result.Response.ID, "the synthesized response needs a generated id")
	assert.Equal(t, types.FinishStop, result.Response.FinishReason)
}

func TestRun_NoSynthesisWhenLastStepHasNoToolCalls(t *testing.T) {
	gen := &scriptedGenerator{responses: []types.ChatResponse{textResponse("final answer")}}

	result, err := Run(context.Background(), gen, types.ChatRequest{}, Options{StopWhen: StepCountIs(1)})

	require.NoError(t, err)
	assert.Equal(t, "final answer", result.Response.Text())
}

func TestRun_DefaultStopConditionIsSingleStep(t *testing.T) {
	weatherTool := types.Tool{
		Name: "get_weather",
		Execute: func(_ context.Context, call types.ToolCall) (types.ToolResult, error) {
			return types.ToolResult{ToolCallID: call.ID, ToolName: call.ToolName, Result: "sunny"}, nil
		},
	}
	gen := &scriptedGenerator{responses: []types.ChatResponse{toolCallResponse("get_weather", "call-1")}}

	result, err := Run(context.Background(), gen, types.ChatRequest{}, Options{Tools: []types.Tool{weatherTool}})
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls, "default StepCountIs(1) should stop after the first step")
	assert.Len(t, result.Steps, 1)
}

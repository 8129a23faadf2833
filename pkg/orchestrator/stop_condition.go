// Package orchestrator implements the multi-step tool-calling loop: on each
// step it calls the model, executes any tool calls the model requested, and
// decides whether to continue based on a StopCondition. Grounded verbatim on
// the teacher's ai/generate.go loop and ai/stop_condition.go combinators,
// extended with the additional combinators spec.md names
// (HasTextResponse, HasToolResult, HasNoToolCalls, AnyOf, AllOf, Custom).
package orchestrator

import "github.com/corvidai/gollm/pkg/types"

// State is the information available to a StopCondition after each step.
type State struct {
	Steps    []Step
	Messages []types.ChatMessage
	Usage    types.Usage
}

// Step records one orchestrator iteration: the assistant response and any
// tool results executed in response to it.
type Step struct {
	Response    types.ChatResponse
	ToolResults []types.ToolResult
}

// StopCondition inspects State and returns a non-empty reason string when
// the loop should stop, or "" to continue.
type StopCondition func(State) string

// StepCountIs stops once the loop has completed n steps.
func StepCountIs(n int) StopCondition {
	return func(s State) string {
		if len(s.Steps) >= n {
			return "step-count"
		}
		return ""
	}
}

// HasToolCall stops once any step's response called the named tool.
func HasToolCall(toolName string) StopCondition {
	return func(s State) string {
		for _, step := range s.Steps {
			for _, call := range step.Response.ToolCalls() {
				if call.ToolName == toolName {
					return "has-tool-call:" + toolName
				}
			}
		}
		return ""
	}
}

// HasTextResponse stops once the most recent step produced a response with
// no tool calls and at least one TextPart.
func HasTextResponse() StopCondition {
	return func(s State) string {
		if len(s.Steps) == 0 {
			return ""
		}
		last := s.Steps[len(s.Steps)-1]
		if len(last.Response.ToolCalls()) > 0 {
			return ""
		}
		if last.Response.Text() != "" {
			return "has-text-response"
		}
		return ""
	}
}

// HasToolResult stops once the named tool has produced a result.
func HasToolResult(toolName string) StopCondition {
	return func(s State) string {
		for _, step := range s.Steps {
			for _, result := range step.ToolResults {
				if result.ToolName == toolName {
					return "has-tool-result:" + toolName
				}
			}
		}
		return ""
	}
}

// HasNoToolCalls stops once the most recent step's response requested no
// tool calls at all.
func HasNoToolCalls() StopCondition {
	return func(s State) string {
		if len(s.Steps) == 0 {
			return ""
		}
		last := s.Steps[len(s.Steps)-1]
		if len(last.Response.ToolCalls()) == 0 {
			return "has-no-tool-calls"
		}
		return ""
	}
}

// AnyOf stops as soon as any of conditions would stop.
func AnyOf(conditions ...StopCondition) StopCondition {
	return func(s State) string {
		for _, cond := range conditions {
			if reason := cond(s); reason != "" {
				return reason
			}
		}
		return ""
	}
}

// AllOf stops only once every condition would stop, returning the last
// condition's reason.
func AllOf(conditions ...StopCondition) StopCondition {
	return func(s State) string {
		var last string
		for _, cond := range conditions {
			reason := cond(s)
			if reason == "" {
				return ""
			}
			last = reason
		}
		return last
	}
}

// Custom wraps an arbitrary predicate as a StopCondition.
func Custom(name string, predicate func(State) bool) StopCondition {
	return func(s State) string {
		if predicate(s) {
			return name
		}
		return ""
	}
}

// EvaluateStopConditions evaluates every condition (for its side effects,
// matching the teacher's explicit Promise.all-equivalent semantics carried
// over from the TypeScript SDK this library's ancestor tracked) and returns
// the first non-empty reason, or "" if none fired.
func EvaluateStopConditions(conditions []StopCondition, state State) string {
	reasons := make([]string, len(conditions))
	for i, cond := range conditions {
		reasons[i] = cond(state)
	}
	for _, reason := range reasons {
		if reason != "" {
			return reason
		}
	}
	return ""
}

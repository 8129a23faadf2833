package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvidai/gollm/pkg/types"
)

func stepWithToolCalls(names ...string) Step {
	var content []types.ContentPart
	for _, name := range names {
		content = append(content, types.ToolCallPart{ToolCallID: "call-" + name, ToolName: name})
	}
	return Step{Response: types.ChatResponse{Content: content}}
}

func stepWithText(text string) Step {
	return Step{Response: types.ChatResponse{Content: []types.ContentPart{types.TextPart{Text: text}}}}
}

func TestStepCountIs(t *testing.T) {
	cond := StepCountIs(2)
	assert.Equal(t, "", cond(State{Steps: []Step{{}}}))
	assert.Equal(t, "step-count", cond(State{Steps: []Step{{}, {}}}))
}

func TestHasToolCall_StopsOnceNamedToolCalled(t *testing.T) {
	cond := HasToolCall("get_weather")
	assert.Equal(t, "", cond(State{Steps: []Step{stepWithToolCalls("search")}}))
	assert.Equal(t, "has-tool-call:get_weather", cond(State{Steps: []Step{stepWithToolCalls("search", "get_weather")}}))
}

func TestHasTextResponse_RequiresNoToolCallsAndNonEmptyText(t *testing.T) {
	cond := HasTextResponse()
	assert.Equal(t, "", cond(State{}))
	assert.Equal(t, "", cond(State{Steps: []Step{stepWithToolCalls("search")}}))
	assert.Equal(t, "has-text-response", cond(State{Steps: []Step{stepWithText("final answer")}}))
}

func TestHasToolResult_StopsOnceNamedToolProducedResult(t *testing.T) {
	cond := HasToolResult("get_weather")
	state := State{Steps: []Step{{ToolResults: []types.ToolResult{{ToolName: "search"}}}}}
	assert.Equal(t, "", cond(state))

	state = State{Steps: []Step{{ToolResults: []types.ToolResult{{ToolName: "get_weather"}}}}}
	assert.Equal(t, "has-tool-result:get_weather", cond(state))
}

func TestHasNoToolCalls(t *testing.T) {
	cond := HasNoToolCalls()
	assert.Equal(t, "", cond(State{}))
	assert.Equal(t, "", cond(State{Steps: []Step{stepWithToolCalls("search")}}))
	assert.Equal(t, "has-no-tool-calls", cond(State{Steps: []Step{stepWithText("done")}}))
}

func TestAnyOf_StopsOnFirstMatchingCondition(t *testing.T) {
	cond := AnyOf(StepCountIs(5), HasToolCall("get_weather"))
	state := State{Steps: []Step{stepWithToolCalls("get_weather")}}
	assert.Equal(t, "has-tool-call:get_weather", cond(state))
}

func TestAnyOf_EmptyWhenNoneMatch(t *testing.T) {
	cond := AnyOf(StepCountIs(5), HasToolCall("get_weather"))
	assert.Equal(t, "", cond(State{Steps: []Step{stepWithToolCalls("search")}}))
}

func TestAllOf_RequiresEveryConditionToStop(t *testing.T) {
	cond := AllOf(StepCountIs(1), HasNoToolCalls())
	assert.Equal(t, "", cond(State{Steps: []Step{stepWithToolCalls("search")}}))
	assert.NotEqual(t, "", cond(State{Steps: []Step{stepWithText("done")}}))
}

func TestCustom_WrapsArbitraryPredicate(t *testing.T) {
	cond := Custom("three-steps", func(s State) bool { return len(s.Steps) == 3 })
	assert.Equal(t, "", cond(State{Steps: []Step{{}, {}}}))
	assert.Equal(t, "three-steps", cond(State{Steps: []Step{{}, {}, {}}}))
}

func TestEvaluateStopConditions_ReturnsFirstNonEmptyReason(t *testing.T) {
	conditions := []StopCondition{StepCountIs(10), HasNoToolCalls(), StepCountIs(1)}
	state := State{Steps: []Step{stepWithText("done")}}
	assert.Equal(t, "has-no-tool-calls", EvaluateStopConditions(conditions, state))
}

func TestEvaluateStopConditions_EmptyWhenNoneFire(t *testing.T) {
	conditions := []StopCondition{StepCountIs(10)}
	assert.Equal(t, "", EvaluateStopConditions(conditions, State{Steps: []Step{{}}}))
}

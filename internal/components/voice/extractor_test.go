package voice

import (
	"context"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	resp openai.ChatCompletionResponse
	err  error
	req  openai.ChatCompletionRequest
}

func (s *stubCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.req = req
	return s.resp, s.err
}

func toolCall(name, args string) openai.ToolCall {
	return openai.ToolCall{
		Type:     openai.ToolTypeFunction,
		Function: openai.FunctionCall{Name: name, Arguments: args},
	}
}

func completion(calls ...openai.ToolCall) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, ToolCalls: calls}},
		},
	}
}

func TestExtractParsesBothTools(t *testing.T) {
	stub := &stubCompleter{resp: completion(
		toolCall(toolLogFood, `{"meal_type":"lunch","items":[{"name":"chicken salad","calories":350,"protein":30}]}`),
		toolCall(toolLogExercise, `{"activities":[{"activity_type":"walking","duration_minutes":20,"intensity":"light","calories_burned":60}]}`),
	)}

	records, err := newExtractor(stub, "gpt-4o-mini", 0).Extract(context.Background(), "salad for lunch then a walk")
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.NotNil(t, records[0].Food)
	assert.Equal(t, "lunch", *records[0].Food.MealType)
	assert.Equal(t, "chicken salad", records[0].Food.Items[0].Name)
	assert.Equal(t, 350, records[0].Food.Items[0].Calories)
	assert.InDelta(t, 30.0, *records[0].Food.Items[0].Protein, 1e-9)

	require.NotNil(t, records[1].Exercise)
	activity := records[1].Exercise.Activities[0]
	assert.Equal(t, "walking", activity.ActivityType)
	assert.Equal(t, 20, *activity.DurationMinutes)
	assert.Equal(t, "light", string(*activity.Intensity))

	assert.Equal(t, "gpt-4o-mini", stub.req.Model)
	assert.Equal(t, "auto", stub.req.ToolChoice)
	assert.Equal(t, true, stub.req.ParallelToolCalls)
	require.Len(t, stub.req.Tools, 2)
	require.Len(t, stub.req.Messages, 2)
	assert.Equal(t, "salad for lunch then a walk", stub.req.Messages[1].Content)
}

func TestExtractFailures(t *testing.T) {
	tests := []struct {
		name string
		stub *stubCompleter
	}{
		{name: "transport error", stub: &stubCompleter{err: errors.New("connection reset")}},
		{name: "no choices", stub: &stubCompleter{}},
		{name: "no tool calls", stub: &stubCompleter{resp: completion()}},
		{name: "unknown tool only", stub: &stubCompleter{resp: completion(toolCall("log_sleep", `{}`))}},
		{name: "empty items", stub: &stubCompleter{resp: completion(toolCall(toolLogFood, `{"items":[]}`))}},
		{name: "malformed arguments", stub: &stubCompleter{resp: completion(toolCall(toolLogExercise, `{"activities":`))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newExtractor(tt.stub, "m", 0).Extract(context.Background(), "hello")
			require.ErrorIs(t, err, ErrExtraction)
		})
	}
}

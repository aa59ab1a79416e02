package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/andrasnagy-data/voicelog/internal/components/diary"
	"github.com/andrasnagy-data/voicelog/internal/shared/config"
	"github.com/andrasnagy-data/voicelog/internal/shared/observability"
)

const (
	toolLogFood     = "log_food_intake"
	toolLogExercise = "log_exercise"
)

var ErrExtraction = errors.New("could not extract food or exercise from transcript")

const systemPrompt = `You are a nutrition and fitness tracking assistant. When users describe their meals or workouts:

1. Extract all food items or exercise activities mentioned.
2. If the user mentions both food and exercise, call both log_food_intake and log_exercise.
3. Detect the meal type from keywords or time of day:
   - "breakfast", "morning", "good morning" means breakfast
   - "lunch", "afternoon", "good afternoon" means lunch
   - "dinner", "evening", "good evening", "tonight" means dinner
   - "snack" or no clue means snack
4. Assume a typical portion when none is given (an apple is one medium apple).
5. Estimate calories from standard nutritional data for average portions.
6. Estimate exercise calories for an average 70kg (154lb) adult.
7. Prefer slightly low estimates over high ones.
8. Include protein, carbs and fat for food items when possible.
9. Intensity: light is walking or gentle yoga, moderate is jogging or a regular workout, intense is running or HIIT.

Always give a reasonable estimate even when the description is vague.`

type (
	// Extracter turns a transcript into structured diary records.
	Extracter interface {
		Extract(ctx context.Context, transcript string) ([]Record, error)
	}

	chatCompleter interface {
		CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	}

	openAIExtractor struct {
		client  chatCompleter
		model   string
		timeout time.Duration
	}
)

// NewExtractor builds an OpenAI backed extractor. OPENAI_BASE_URL points it
// at any OpenAI compatible endpoint.
func NewExtractor(cfg *config.Config, logger zerolog.Logger) Extracter {
	if cfg.OpenAIAPIKey == "" {
		logger.Warn().Msg("OPENAI_API_KEY not set, voice processing will fail")
	}

	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAIBaseURL
	}

	return newExtractor(openai.NewClientWithConfig(clientConfig), cfg.OpenAIModel, cfg.ExtractionTimeout)
}

func newExtractor(client chatCompleter, model string, timeout time.Duration) *openAIExtractor {
	return &openAIExtractor{client: client, model: model, timeout: timeout}
}

// Extract asks the model to call log_food_intake and log_exercise for the
// transcript. Every failure, including a reply with nothing loggable, wraps
// ErrExtraction.
func (e *openAIExtractor) Extract(ctx context.Context, transcript string) (records []Record, err error) {
	start := time.Now()
	defer func() { observability.RecordExtraction(start, err) }()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: transcript},
		},
		Tools:             tools,
		ToolChoice:        "auto",
		ParallelToolCalls: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrExtraction)
	}

	records, err = parseToolCalls(resp.Choices[0].Message.ToolCalls)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	if len(records) == 0 {
		return nil, ErrExtraction
	}
	return records, nil
}

// parseToolCalls decodes the known tool calls in order. Unknown functions and
// calls without items are skipped.
func parseToolCalls(calls []openai.ToolCall) ([]Record, error) {
	records := make([]Record, 0, len(calls))
	for _, call := range calls {
		if call.Type != "" && call.Type != openai.ToolTypeFunction {
			continue
		}

		switch call.Function.Name {
		case toolLogFood:
			var food diary.FoodLogIn
			if err := json.Unmarshal([]byte(call.Function.Arguments), &food); err != nil {
				return nil, fmt.Errorf("decode %s arguments: %w", toolLogFood, err)
			}
			if len(food.Items) > 0 {
				records = append(records, Record{Food: &food})
			}
		case toolLogExercise:
			var exercise diary.ExerciseLogIn
			if err := json.Unmarshal([]byte(call.Function.Arguments), &exercise); err != nil {
				return nil, fmt.Errorf("decode %s arguments: %w", toolLogExercise, err)
			}
			if len(exercise.Activities) > 0 {
				records = append(records, Record{Exercise: &exercise})
			}
		}
	}
	return records, nil
}

var tools = []openai.Tool{
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        toolLogFood,
			Description: "Log food items consumed by the user with calorie estimates and nutritional information",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"meal_type": {
						Type:        jsonschema.String,
						Enum:        []string{"breakfast", "lunch", "dinner", "snack"},
						Description: "Type of meal, from context such as \"breakfast\" or the time of day",
					},
					"items": {
						Type: jsonschema.Array,
						Items: &jsonschema.Definition{
							Type: jsonschema.Object,
							Properties: map[string]jsonschema.Definition{
								"name":     {Type: jsonschema.String, Description: "Name of the food item, e.g. \"banana\""},
								"quantity": {Type: jsonschema.Number, Description: "Quantity of the food item"},
								"unit":     {Type: jsonschema.String, Description: "Unit of measurement, e.g. \"cups\" or \"grams\""},
								"calories": {Type: jsonschema.Integer, Description: "Estimated calories for this food item"},
								"protein":  {Type: jsonschema.Number, Description: "Grams of protein"},
								"carbs":    {Type: jsonschema.Number, Description: "Grams of carbohydrates"},
								"fat":      {Type: jsonschema.Number, Description: "Grams of fat"},
								"notes":    {Type: jsonschema.String, Description: "Any additional notes or context"},
							},
							Required: []string{"name", "calories"},
						},
					},
				},
				Required: []string{"items"},
			},
		},
	},
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        toolLogExercise,
			Description: "Log exercise activities performed by the user with calorie burn estimates",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"activities": {
						Type: jsonschema.Array,
						Items: &jsonschema.Definition{
							Type: jsonschema.Object,
							Properties: map[string]jsonschema.Definition{
								"activity_type":    {Type: jsonschema.String, Description: "Type of exercise, e.g. \"running\" or \"yoga\""},
								"duration_minutes": {Type: jsonschema.Integer, Description: "Duration of the exercise in minutes"},
								"intensity": {
									Type:        jsonschema.String,
									Enum:        []string{"light", "moderate", "intense"},
									Description: "Intensity level of the exercise",
								},
								"calories_burned": {Type: jsonschema.Integer, Description: "Estimated calories burned during this activity"},
								"distance":        {Type: jsonschema.Number, Description: "Distance covered in miles, if applicable"},
								"notes":           {Type: jsonschema.String, Description: "Any additional notes or context"},
							},
							Required: []string{"activity_type", "calories_burned"},
						},
					},
				},
				Required: []string{"activities"},
			},
		},
	},
}

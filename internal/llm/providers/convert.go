package providers

import (
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"github.com/zero-day-ai/graphqa/internal/llm"
)

// toSchemaMessages converts a request into langchaingo MessageContent. The
// request's SystemPrompt, when set, becomes the leading system message.
func toSchemaMessages(req llm.CompletionRequest) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(req.Messages)+1)

	if req.SystemPrompt != "" {
		result = append(result, llms.TextParts(llms.ChatMessageTypeSystem, req.SystemPrompt))
	}

	for _, msg := range req.Messages {
		var role llms.ChatMessageType
		switch msg.Role {
		case llm.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case llm.RoleAssistant:
			role = llms.ChatMessageTypeAI
		default:
			role = llms.ChatMessageTypeHuman
		}
		result = append(result, llms.TextParts(role, msg.Content))
	}

	return result
}

// fromLangchainResponse converts a langchaingo response.
func fromLangchainResponse(resp *llms.ContentResponse, model string) *llm.CompletionResponse {
	out := &llm.CompletionResponse{
		ID:           uuid.New().String(),
		Model:        model,
		Message:      llm.Message{Role: llm.RoleAssistant},
		FinishReason: llm.FinishReasonStop,
	}
	if resp == nil || len(resp.Choices) == 0 {
		return out
	}

	choice := resp.Choices[0]
	out.Message.Content = choice.Content

	switch choice.StopReason {
	case "length", "max_tokens":
		out.FinishReason = llm.FinishReasonLength
	case "content_filter":
		out.FinishReason = llm.FinishReasonContentFilter
	}

	out.Usage = usageFrom(choice.GenerationInfo)
	return out
}

// usageFrom reads token counts the providers report under differing keys.
func usageFrom(info map[string]any) llm.CompletionTokenUsage {
	var u llm.CompletionTokenUsage
	for _, k := range []string{"PromptTokens", "InputTokens", "input_tokens"} {
		if v, ok := asInt(info[k]); ok {
			u.PromptTokens = v
			break
		}
	}
	for _, k := range []string{"CompletionTokens", "OutputTokens", "output_tokens"} {
		if v, ok := asInt(info[k]); ok {
			u.CompletionTokens = v
			break
		}
	}
	u.TotalTokens = u.PromptTokens + u.CompletionTokens
	return u
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// buildCallOptions converts a request into langchaingo call options.
// Temperature is always sent: a zero temperature is a deliberate choice.
func buildCallOptions(req llm.CompletionRequest) []llms.CallOption {
	callOpts := []llms.CallOption{
		llms.WithTemperature(req.Temperature),
	}

	if req.TopK > 0 {
		callOpts = append(callOpts, llms.WithTopK(req.TopK))
	}

	if req.TopP > 0 {
		callOpts = append(callOpts, llms.WithTopP(req.TopP))
	}

	if req.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(req.MaxTokens))
	}

	if len(req.StopSequences) > 0 {
		callOpts = append(callOpts, llms.WithStopWords(req.StopSequences))
	}

	if req.Model != "" {
		callOpts = append(callOpts, llms.WithModel(req.Model))
	}

	return callOpts
}

package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role Role
	Text string
}

// Tool is a function the model must call; its arguments are the structured reply.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

type ConverseRequest struct {
	Messages []Message
	// System instructions are joined in order.
	System []string
	// Tool, when set, is forced through tool_choice.
	Tool *Tool
}

type ConverseReply struct {
	Role Role
	// Text is set for free-text replies.
	Text string
	// ToolInput is set when the reply invoked the forced tool.
	ToolName  string
	ToolInput map[string]any
}

func (r *ConverseReply) Structured() bool { return r.ToolInput != nil }

// ImageInput is an https URL or a data:image/...;base64 URL.
type ImageInput struct {
	ImageURL string
	Detail   string
}

type inputMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type functionTool struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
}

type responsesRequest struct {
	Model        string         `json:"model"`
	Instructions string         `json:"instructions,omitempty"`
	Input        []inputMessage `json:"input"`
	Tools        []functionTool `json:"tools,omitempty"`
	ToolChoice   any            `json:"tool_choice,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type      string `json:"type"`
		Role      string `json:"role,omitempty"`
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
		Content   []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

func extractOutputText(resp responsesResponse) string {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, c := range item.Content {
				if c.Type == "output_text" && c.Text != "" {
					out.WriteString(c.Text)
				}
			}
		}
	}
	return out.String()
}

func joinSystem(system []string) string {
	parts := make([]string, 0, len(system))
	for _, s := range system {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (c *client) Converse(ctx context.Context, in ConverseRequest) (*ConverseReply, error) {
	if len(in.Messages) == 0 {
		return nil, errors.New("converse: no messages")
	}
	req := responsesRequest{
		Model:        c.cfg.Model,
		Instructions: joinSystem(in.System),
		Input:        make([]inputMessage, 0, len(in.Messages)),
	}
	for _, m := range in.Messages {
		req.Input = append(req.Input, inputMessage{Role: string(m.Role), Content: m.Text})
	}
	if in.Tool != nil {
		req.Tools = []functionTool{{
			Type:        "function",
			Name:        in.Tool.Name,
			Description: in.Tool.Description,
			Parameters:  in.Tool.Parameters,
		}}
		req.ToolChoice = map[string]any{"type": "function", "name": in.Tool.Name}
	}

	var resp responsesResponse
	if err := c.post(ctx, "/v1/responses", req, &resp); err != nil {
		return nil, err
	}
	if resp.Refusal != "" {
		return nil, fmt.Errorf("model refused: %s", resp.Refusal)
	}

	if in.Tool != nil {
		for _, item := range resp.Output {
			if item.Type != "function_call" || item.Name != in.Tool.Name {
				continue
			}
			args := map[string]any{}
			if strings.TrimSpace(item.Arguments) != "" {
				if err := json.Unmarshal([]byte(item.Arguments), &args); err != nil {
					return nil, fmt.Errorf("failed to parse tool arguments: %w; text=%s", err, item.Arguments)
				}
			}
			return &ConverseReply{Role: RoleAssistant, ToolName: item.Name, ToolInput: args}, nil
		}
		return nil, fmt.Errorf("no %s tool call found in response", in.Tool.Name)
	}

	text := extractOutputText(resp)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no output_text found in response")
	}
	return &ConverseReply{Role: RoleAssistant, Text: text}, nil
}

// DescribeImage sends one image with an instruction and returns the reply text.
func (c *client) DescribeImage(ctx context.Context, instruction string, image ImageInput) (string, error) {
	u := strings.TrimSpace(image.ImageURL)
	if u == "" {
		return "", errors.New("describe image: empty image url")
	}
	item := map[string]any{"type": "input_image", "image_url": u}
	if d := strings.TrimSpace(image.Detail); d != "" {
		item["detail"] = d
	}
	req := responsesRequest{
		Model:        c.cfg.VisionModel,
		Instructions: instruction,
		Input: []inputMessage{{
			Role: string(RoleUser),
			Content: []map[string]any{
				{"type": "input_text", "text": "Extract the text from this image."},
				item,
			},
		}},
	}
	var resp responsesResponse
	if err := c.post(ctx, "/v1/responses", req, &resp); err != nil {
		return "", err
	}
	if resp.Refusal != "" {
		return "", fmt.Errorf("model refused: %s", resp.Refusal)
	}
	return extractOutputText(resp), nil
}

package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lamina-ai/recall-go/internal/models"
)

// RecordTurnInput defines the input schema for the record_turn tool.
type RecordTurnInput struct {
	ChannelID       string `json:"channel_id" jsonschema:"required,Conversation channel the turn belongs to"`
	ParticipantID   string `json:"participant_id" jsonschema:"required,Stable identifier of the author"`
	ParticipantName string `json:"participant_name,omitempty" jsonschema:"Display name of the author"`
	Text            string `json:"text" jsonschema:"required,The message text"`
	FromAgent       bool   `json:"from_agent,omitempty" jsonschema:"True when the agent authored this turn"`
	Timestamp       string `json:"timestamp,omitempty" jsonschema:"RFC3339 timestamp; defaults to now"`
}

// NewRecordTurnHandler creates the record_turn tool handler. This is
// the ingestion boundary: one call per authored message.
func NewRecordTurnHandler(deps *Dependencies) mcp.ToolHandlerFor[RecordTurnInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RecordTurnInput) (*mcp.CallToolResult, any, error) {
		if input.ChannelID == "" {
			return ErrorResult("channel_id cannot be empty", "Provide the conversation channel id"), nil, nil
		}
		if input.ParticipantID == "" {
			return ErrorResult("participant_id cannot be empty", "Provide the author's id"), nil, nil
		}
		if input.Text == "" {
			return ErrorResult("text cannot be empty", "Provide the message text"), nil, nil
		}

		turn := models.Turn{
			ParticipantID:   input.ParticipantID,
			ParticipantName: input.ParticipantName,
			Text:            input.Text,
			ChannelID:       input.ChannelID,
			FromAgent:       input.FromAgent,
		}
		if turn.ParticipantName == "" {
			turn.ParticipantName = input.ParticipantID
		}
		if input.Timestamp != "" {
			ts, err := time.Parse(time.RFC3339, input.Timestamp)
			if err != nil {
				return ErrorResult("Invalid timestamp", "Use RFC3339, e.g. 2026-03-01T12:00:00Z"), nil, nil
			}
			turn.Timestamp = ts
		}

		deps.Memory.RecordTurn(input.ChannelID, turn)
		deps.logger().Debug("turn recorded",
			"channel", input.ChannelID, "participant", input.ParticipantID, "from_agent", input.FromAgent)

		return TextResult("recorded"), nil, nil
	}
}

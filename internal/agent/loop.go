package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/shortlink-org/go-sdk/logger"
)

// MaxTurns is spec.md §4.6's hard stop: "MAX_TURNS = 6 reached".
const MaxTurns = 6

// Driver is the plain iterative tool-loop (spec.md §9 "implement as a
// plain iterative driver: call LM -> parse one tool call -> execute ->
// append result -> repeat"), grounded on
// asim-malten/agent/ai/ai.go's use of sashabaranov/go-openai chat
// completion.
type Driver struct {
	log    logger.Logger
	client *openai.Client
	model  string
	engine *Engine
}

// NewDriver constructs a Driver.
func NewDriver(log logger.Logger, client *openai.Client, model string, engine *Engine) *Driver {
	return &Driver{log: log, client: client, model: model, engine: engine}
}

// TickObservation records what happened in one tool turn, for the
// /ai/optimize response's details[] (spec.md §6).
type TickObservation struct {
	Tool   string
	Result string
	Err    string
}

// systemPrompt orients the model toward the two-phase tick described in
// spec.md §4.6.
const systemPrompt = `You are the dispatch optimization agent for one area of a parcel
logistics network. Each tick you should: (1) run first-mile matching by
calling get_pending_orders, then get_available_shippers and
find_nearest_shippers, then process_batch_assignments; if
get_pending_orders returns a SKIP_PHASE_1 sentinel, skip straight to
phase 2; (2) run middle-mile consolidation by calling
get_area_transfer_queue, get_trucks_in_area, and assign_batch_to_truck.
If phase 1 found more pending orders than available couriers, call
rebalance_shippers before moving on. Call report_incident only if asked
to handle an incident explicitly. Stop once both phases have produced a
result.`

// RunTick drives the LM tool loop for one area (spec.md §4.6 "Tool-loop
// contract"). Hard stop conditions: both phases produced a terminal
// observation, an incident-handling tool ran, or MAX_TURNS is reached.
func (d *Driver) RunTick(ctx context.Context, areaID uuid.UUID) ([]TickObservation, error) {
	tools := make([]openai.Tool, 0, len(ToolDefinitions()))
	for _, t := range ToolDefinitions() {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Run the optimization tick for area_id=%s.", areaID)},
	}

	var observations []TickObservation
	phase1Done, phase2Done, incidentRan := false, false, false

	for turn := 0; turn < MaxTurns; turn++ {
		if phase1Done && phase2Done {
			break
		}
		if incidentRan {
			break
		}

		resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    d.model,
			Messages: messages,
			Tools:    tools,
		})
		if err != nil {
			return observations, fmt.Errorf("agent: chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			break
		}

		choice := resp.Choices[0].Message
		messages = append(messages, choice)

		if len(choice.ToolCalls) == 0 {
			// The model produced a final answer with no further tool
			// calls; treat this as both phases concluding.
			break
		}

		for _, tc := range choice.ToolCalls {
			call := ToolCall{Name: tc.Function.Name, Args: json.RawMessage(tc.Function.Arguments)}

			result, execErr := d.engine.Dispatch(ctx, call)

			obs := TickObservation{Tool: call.Name}
			var content string
			if execErr != nil {
				obs.Err = execErr.Error()
				content = fmt.Sprintf("error: %s", execErr.Error())
			} else {
				encoded, merr := json.Marshal(result)
				if merr != nil {
					content = fmt.Sprintf("%v", result)
				} else {
					content = string(encoded)
				}
				obs.Result = content
			}
			observations = append(observations, obs)

			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    content,
				ToolCallID: tc.ID,
			})

			switch call.Name {
			case ToolProcessBatchAssignments, ToolGetPendingOrders:
				if call.Name == ToolProcessBatchAssignments {
					phase1Done = true
				}
			case ToolAssignBatchToTruck, ToolGetAreaTransferQueue:
				if call.Name == ToolAssignBatchToTruck {
					phase2Done = true
				}
			case ToolReportIncident:
				incidentRan = true
			}
		}
	}

	return observations, nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hanapwede/job-recommender/internal/logger"
	"github.com/hanapwede/job-recommender/internal/ranking"
	"github.com/hanapwede/job-recommender/internal/types"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the recommender as an MCP tool over stdio",
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	src, err := openSource(cmd.Context(), appConfig)
	if err != nil {
		return err
	}
	defer src.Close() //nolint:errcheck // read-only source

	engine, err := ranking.NewEngine(src, src, appConfig.Recommender.Options(), ranking.WithLogger(appLogger))
	if err != nil {
		return err
	}

	s := newMCPServer(engine)
	appLogger.Info("mcp server listening on stdio")
	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

// recommendJobsArgs are the arguments of the recommend_jobs tool.
type recommendJobsArgs struct {
	UserID     int64 `mapstructure:"user_id"`
	TopK       int   `mapstructure:"top_k"`
	Debug      bool  `mapstructure:"debug"`
	EmployerID int64 `mapstructure:"employer_id"`
	JobFairID  int64 `mapstructure:"job_fair_id"`
}

func newMCPServer(engine *ranking.Engine) *server.MCPServer {
	s := server.NewMCPServer(
		app,
		version,
		server.WithToolCapabilities(false),
	)

	tool := mcp.NewTool("recommend_jobs",
		mcp.WithDescription("Recommend job postings for a job seeker, filtered by disability compatibility and ranked by skill and preference similarity"),
	)
	tool.InputSchema = mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"user_id":     map[string]interface{}{"type": "integer", "description": "Job seeker user id"},
			"top_k":       map[string]interface{}{"type": "integer", "description": "Maximum number of recommendations (optional)"},
			"debug":       map[string]interface{}{"type": "boolean", "description": "Include the eligibility trace for every job"},
			"employer_id": map[string]interface{}{"type": "integer", "description": "Only rank postings of this employer (optional)"},
			"job_fair_id": map[string]interface{}{"type": "integer", "description": "Only rank postings of this job fair (optional)"},
		},
		Required: []string{"user_id"},
	}
	s.AddTool(tool, recommendJobsHandler(engine))
	return s
}

func recommendJobsHandler(engine *ranking.Engine) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		args, err := decodeToolArgs(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		query := types.RecommendQuery{UserID: args.UserID, TopK: args.TopK, Debug: args.Debug}
		if err := query.Validate(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		result, err := engine.Recommend(ctx, ranking.Request{
			UserID: query.UserID,
			Scope:  scopeFromFlags(args.EmployerID, args.JobFairID),
			TopK:   query.TopK,
			Debug:  query.Debug,
		})
		if err != nil {
			appLogger.Warn("mcp recommendation failed", zap.Int64(logger.FieldUserID, query.UserID), zap.Error(err))
			return mcp.NewToolResultError(fmt.Sprintf("Failed to recommend jobs: %v", err)), nil
		}

		data, err := json.MarshalIndent(result.Body(query.Debug), "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal recommendations: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// decodeToolArgs decodes JSON-RPC arguments, where every number arrives as a
// float64, into recommendJobsArgs. Unknown keys are rejected.
func decodeToolArgs(raw map[string]interface{}) (recommendJobsArgs, error) {
	var args recommendJobsArgs
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &args,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return args, err
	}
	if err := decoder.Decode(raw); err != nil {
		return args, err
	}
	return args, nil
}

package challenge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Miandari/dailygrit/pkg/models"
	"github.com/Miandari/dailygrit/pkg/utils"
)

var RecalculateCmd = &cobra.Command{
	Use:   "recalculate <challenge-id>",
	Short: "Recalculate a challenge's points",
	Long:  "Ask the API to rescore every entry of a challenge with its current scoring rules. Only the challenge creator may do this.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			token = viper.GetString("client.token")
		}
		if token == "" {
			return fmt.Errorf("no token. Run: dailygrit token issue --user <id> --save")
		}

		ctx, cancel := utils.WithLongTimeout(cmd.Context())
		defer cancel()

		result, err := Recalculate(ctx, http.DefaultClient, viper.GetString("client.api_url"), token, args[0])
		if err != nil {
			if utils.IsContextError(err) {
				return fmt.Errorf("recalculation timed out; it may still be running on the server: %w", err)
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Recalculated %d entries for challenge %s\n", result.Recalculated, result.ChallengeID)
		return nil
	},
}

type apiResponse struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

// Recalculate calls POST /api/v1/challenges/:id/recalculate
func Recalculate(ctx context.Context, client *http.Client, baseURL, token, challengeID string) (*models.RecalculationResponse, error) {
	url := strings.TrimRight(baseURL, "/") + "/api/v1/challenges/" + challengeID + "/recalculate"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recalculate request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("unexpected response (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if !envelope.Success {
		return nil, fmt.Errorf("recalculate failed (%d %s): %s", resp.StatusCode, envelope.Code, envelope.Error)
	}

	var result models.RecalculationResponse
	if err := json.Unmarshal(envelope.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return &result, nil
}

func init() {
	RecalculateCmd.Flags().String("token", "", "bearer token (defaults to the saved client token)")
}

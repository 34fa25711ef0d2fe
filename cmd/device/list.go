package device

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/martinsuchenak/invd/internal/log"
	"github.com/martinsuchenak/invd/internal/model"
	"github.com/paularlott/cli"
)

func ListCommand() *cli.Command {
	return &cli.Command{
		Name:        "list",
		Usage:       "List all devices",
		Description: "List devices in the inventory, optionally filtered",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Usage: "Filter by exact status"},
			&cli.StringFlag{Name: "name", Usage: "Filter by name substring"},
			&cli.StringFlag{Name: "server", Usage: "Server URL", DefaultValue: getDefaultServerURL()},
			&cli.StringFlag{Name: "api-token", Usage: "API authentication token", EnvVars: []string{"INVD_API_TOKEN"}},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			status := cmd.GetString("status")
			name := cmd.GetString("name")
			log.Debug("Listing devices", "status", status, "name", name, "server", cmd.GetString("server"))

			query := url.Values{}
			if status != "" {
				query.Set("status", status)
			}
			if name != "" {
				query.Set("name", name)
			}
			listURL := cmd.GetString("server") + "/api/devices"
			if len(query) > 0 {
				listURL += "?" + query.Encode()
			}

			resp, err := makeRequest("GET", listURL, cmd.GetString("api-token"), nil)
			if err != nil {
				log.Error("Failed to connect to server for list", "error", err)
				return fmt.Errorf("failed to connect to server: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				log.Error("Server returned error for list", "status", resp.Status)
				return fmt.Errorf("server error: %s", resp.Status)
			}

			var result struct {
				Items []model.Device `json:"items"`
				Count int            `json:"count"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				log.Error("Failed to decode device list response", "error", err)
				return err
			}

			log.Info("Listed devices successfully", "count", result.Count)
			printDevices(result.Items)
			return nil
		},
	}
}

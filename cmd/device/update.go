package device

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/martinsuchenak/invd/internal/log"
	"github.com/paularlott/cli"
)

func UpdateCommand() *cli.Command {
	return &cli.Command{
		Name:        "update",
		Usage:       "Update a device",
		Description: "Update an existing device; only the given flags are changed",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Device name"},
			&cli.StringFlag{Name: "ip", Usage: "IPv4 address"},
			&cli.StringFlag{Name: "type", Usage: "Device type (router, switch, server)"},
			&cli.StringFlag{Name: "status", Usage: "Device status (online, offline, unknown)"},
			&cli.StringFlag{Name: "location", Usage: "Device location"},
			&cli.StringFlag{Name: "server", Usage: "Server URL", DefaultValue: getDefaultServerURL()},
			&cli.StringFlag{Name: "api-token", Usage: "API authentication token", EnvVars: []string{"INVD_API_TOKEN"}},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.GetStringArg("id")
			log.Debug("Updating device", "id", id, "server", cmd.GetString("server"))

			payload := map[string]string{}
			for flag, field := range map[string]string{
				"name":     "name",
				"ip":       "ip_address",
				"type":     "type",
				"status":   "status",
				"location": "location",
			} {
				if value := cmd.GetString(flag); value != "" {
					payload[field] = value
				}
			}
			if len(payload) == 0 {
				return fmt.Errorf("no fields provided for update")
			}

			data, err := json.Marshal(payload)
			if err != nil {
				log.Error("Failed to marshal update data", "error", err, "id", id)
				return err
			}

			resp, err := makeRequest("PUT", cmd.GetString("server")+"/api/devices/"+id, cmd.GetString("api-token"), strings.NewReader(string(data)))
			if err != nil {
				log.Error("Failed to connect to server for update", "error", err, "id", id)
				return fmt.Errorf("failed to connect to server: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				log.Warn("Device not found for update", "id", id)
				return fmt.Errorf("device not found")
			}
			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				log.Error("Server returned error for update", "status", resp.StatusCode, "body", string(body), "id", id)
				return fmt.Errorf("server error: %s", string(body))
			}

			log.Info("Device updated successfully", "id", id)
			fmt.Println("Device updated")
			return nil
		},
	}
}

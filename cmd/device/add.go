package device

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/martinsuchenak/invd/internal/log"
	"github.com/martinsuchenak/invd/internal/model"
	"github.com/paularlott/cli"
)

func AddCommand() *cli.Command {
	return &cli.Command{
		Name:        "add",
		Usage:       "Add a new device",
		Description: "Add a new device to the inventory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Device name", Required: true},
			&cli.StringFlag{Name: "ip", Usage: "IPv4 address", Required: true},
			&cli.StringFlag{Name: "type", Usage: "Device type (router, switch, server)", Required: true},
			&cli.StringFlag{Name: "status", Usage: "Device status (online, offline, unknown)", DefaultValue: model.StatusUnknown},
			&cli.StringFlag{Name: "location", Usage: "Device location"},
			&cli.StringFlag{Name: "server", Usage: "Server URL", DefaultValue: getDefaultServerURL()},
			&cli.StringFlag{Name: "api-token", Usage: "API authentication token", EnvVars: []string{"INVD_API_TOKEN"}},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			deviceName := cmd.GetString("name")
			log.Debug("Adding device", "name", deviceName, "server", cmd.GetString("server"))

			payload := map[string]string{
				"name":       deviceName,
				"ip_address": cmd.GetString("ip"),
				"type":       cmd.GetString("type"),
				"status":     cmd.GetString("status"),
			}
			if location := cmd.GetString("location"); location != "" {
				payload["location"] = location
			}

			data, err := json.Marshal(payload)
			if err != nil {
				log.Error("Failed to marshal device data", "error", err, "name", deviceName)
				return err
			}

			log.Debug("Sending device creation request", "name", deviceName)
			resp, err := makeRequest("POST", cmd.GetString("server")+"/api/devices", cmd.GetString("api-token"), strings.NewReader(string(data)))
			if err != nil {
				log.Error("Failed to connect to server", "error", err, "name", deviceName)
				return fmt.Errorf("failed to connect to server: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
				body, _ := io.ReadAll(resp.Body)
				log.Error("Server returned error", "status", resp.StatusCode, "body", string(body), "name", deviceName)
				return fmt.Errorf("server error: %s", string(body))
			}

			var device model.Device
			if err := json.NewDecoder(resp.Body).Decode(&device); err != nil {
				log.Error("Failed to decode response", "error", err, "name", deviceName)
				return err
			}

			log.Info("Device created", "name", device.Name, "id", device.ID)
			fmt.Printf("Device created: %s (ID: %s)\n", device.Name, device.ID)
			return nil
		},
	}
}

package device

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/martinsuchenak/invd/internal/log"
	"github.com/martinsuchenak/invd/internal/model"
	"github.com/paularlott/cli"
)

func PingCommand() *cli.Command {
	return &cli.Command{
		Name:        "ping",
		Usage:       "Ping a device",
		Description: "Probe a device's reachability and update its status",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "server", Usage: "Server URL", DefaultValue: getDefaultServerURL()},
			&cli.StringFlag{Name: "api-token", Usage: "API authentication token", EnvVars: []string{"INVD_API_TOKEN"}},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.GetStringArg("id")
			log.Debug("Pinging device", "id", id, "server", cmd.GetString("server"))

			resp, err := makeRequest("POST", cmd.GetString("server")+"/api/devices/"+id+"/ping", cmd.GetString("api-token"), nil)
			if err != nil {
				log.Error("Failed to connect to server for ping", "error", err, "id", id)
				return fmt.Errorf("failed to connect to server: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				log.Warn("Device not found for ping", "id", id)
				return fmt.Errorf("device not found")
			}
			if resp.StatusCode != http.StatusOK {
				log.Error("Server returned error for ping", "status", resp.Status, "id", id)
				return fmt.Errorf("server error: %s", resp.Status)
			}

			var result struct {
				Device model.Device `json:"device"`
				Note   string       `json:"note"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				log.Error("Failed to decode ping response", "error", err, "id", id)
				return err
			}

			log.Info("Device probed", "id", id, "status", result.Device.Status, "note", result.Note)
			fmt.Printf("Status: %s (note: %s)\n", result.Device.Status, result.Note)
			printDevice(&result.Device)
			return nil
		},
	}
}

package device

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/martinsuchenak/invd/internal/config"
	"github.com/martinsuchenak/invd/internal/model"
	"github.com/paularlott/cli"
)

func Commands() []*cli.Command {
	return []*cli.Command{
		AddCommand(),
		ListCommand(),
		GetCommand(),
		UpdateCommand(),
		DeleteCommand(),
		PingCommand(),
	}
}

func getDefaultServerURL() string {
	cfg := config.Load()
	return "http://localhost" + cfg.ListenAddr
}

func addAuthHeader(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func makeRequest(method, url, token string, body *strings.Reader) (*http.Response, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, url, body)
	} else {
		req, err = http.NewRequest(method, url, nil)
	}
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	addAuthHeader(req, token)
	return client.Do(req)
}

func printDevices(devices []model.Device) {
	if len(devices) == 0 {
		fmt.Println("No devices found")
		return
	}
	for _, d := range devices {
		fmt.Printf("%s\t%s\t%s\t%s\t%s\n", d.ID, d.Name, d.IPAddress, d.Type, d.Status)
	}
}

func printDevice(device *model.Device) {
	fmt.Printf("ID:           %s\n", device.ID)
	fmt.Printf("Name:         %s\n", device.Name)
	fmt.Printf("IP Address:   %s\n", device.IPAddress)
	fmt.Printf("Type:         %s\n", device.Type)
	fmt.Printf("Status:       %s\n", device.Status)
	fmt.Printf("Location:     %s\n", device.Location)
	if device.LastChecked != nil {
		fmt.Printf("Last Checked: %s\n", device.LastChecked.Format(time.RFC3339))
	} else {
		fmt.Printf("Last Checked: never\n")
	}
	fmt.Printf("Created:      %s\n", device.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Updated:      %s\n", device.UpdatedAt.Format(time.RFC3339))
}

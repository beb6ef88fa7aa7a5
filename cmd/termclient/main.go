// Command termclient is an interactive terminal for the gateway API. It
// logs in, opens a session against one server, and turns raw keystrokes
// into gateway input calls using the same line discipline as the web UI.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"os"

	"golang.org/x/term"

	"github.com/termgate/termgate/internal/lineedit"
)

const codeQuit = 0x11 // Ctrl+Q

func main() {
	addr := flag.String("addr", "http://localhost:8000", "gateway base URL")
	username := flag.String("username", "", "operator username")
	password := flag.String("password", "", "operator password")
	serverID := flag.Uint("server", 0, "server record ID to connect to")
	flag.Parse()

	if *username == "" || *password == "" || *serverID == 0 {
		fmt.Fprintln(os.Stderr, "Usage: termclient -addr <url> -username <user> -password <pass> -server <id>")
		os.Exit(1)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		log.Fatalf("cookie jar: %v", err)
	}
	client := &apiClient{base: *addr, http: &http.Client{Jar: jar}}

	if err := client.login(*username, *password); err != nil {
		log.Fatalf("login: %v", err)
	}

	sessionID, initialOutput, err := client.connect(*serverID)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer client.disconnect(sessionID)

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		log.Fatalf("raw mode: %v", err)
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	os.Stdout.WriteString(initialOutput)

	if err := run(client, sessionID); err != nil && err != io.EOF {
		term.Restore(int(os.Stdin.Fd()), oldState)
		log.Fatalf("session: %v", err)
	}
}

// run reads keystrokes until Ctrl+Q. A read starting with ESC is treated
// as one complete escape sequence; everything else is fed byte by byte.
func run(client *apiClient, sessionID string) error {
	encoder := lineedit.New()
	buf := make([]byte, 64)

	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return err
		}
		chunk := buf[:n]

		if chunk[0] == 0x1b {
			if err := apply(client, sessionID, encoder.Feed(string(chunk))); err != nil {
				return err
			}
			continue
		}

		for _, b := range chunk {
			if b == codeQuit {
				os.Stdout.WriteString("\r\n")
				return nil
			}
			if err := apply(client, sessionID, encoder.Feed(string(rune(b)))); err != nil {
				return err
			}
		}
	}
}

func apply(client *apiClient, sessionID string, step lineedit.Step) error {
	if step.Echo != "" {
		os.Stdout.WriteString(step.Echo)
	}
	for _, payload := range step.Send {
		output, err := client.sendInput(sessionID, payload)
		if err != nil {
			fmt.Fprintf(os.Stdout, "\r\n%s\r\n%s", err, lineedit.Prompt)
			continue
		}
		if output != "" {
			os.Stdout.WriteString(lineedit.FormatOutput(output))
		}
	}
	return nil
}

type apiClient struct {
	base string
	http *http.Client
}

func (c *apiClient) login(username, password string) error {
	resp, err := c.postJSON("/api/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed (%s)", resp.Status)
	}
	return nil
}

func (c *apiClient) connect(serverID uint) (sessionID, initialOutput string, err error) {
	resp, err := c.postJSON("/api/v1/terminal/connect", map[string]uint{"server_id": serverID})
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	var body struct {
		Success       bool   `json:"success"`
		SessionID     string `json:"session_id"`
		Message       string `json:"message"`
		InitialOutput string `json:"initial_output"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", "", err
	}
	if !body.Success {
		return "", "", fmt.Errorf("%s", body.Message)
	}
	return body.SessionID, body.InitialOutput, nil
}

func (c *apiClient) sendInput(sessionID, input string) (string, error) {
	resp, err := c.postJSON("/api/v1/terminal/input", map[string]string{
		"session_id": sessionID,
		"input":      input,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body struct {
		Success bool   `json:"success"`
		Output  string `json:"output"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if !body.Success {
		return "", fmt.Errorf("%s", body.Message)
	}
	return body.Output, nil
}

func (c *apiClient) disconnect(sessionID string) {
	resp, err := c.postJSON("/api/v1/terminal/disconnect", map[string]string{"session_id": sessionID})
	if err != nil {
		return
	}
	resp.Body.Close()
}

func (c *apiClient) postJSON(path string, payload interface{}) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Post(c.base+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

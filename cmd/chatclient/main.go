package main

import (
	"bufio"
	"bytes"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

const cookieName = "portal_session"

type Frame struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Message any    `json:"message,omitempty"`
}

func main() {
	var server, email, password string

	cmd := &cobra.Command{
		Use:   "chatclient",
		Short: "Log in to the onboarding portal and talk to the assistant over the chat websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(server, email, password)
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://localhost:8888", "portal front-end address")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func login(server, email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}

	resp, err := http.Post(server+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed: %s", resp.Status)
	}
	for _, c := range resp.Cookies() {
		if c.Name == cookieName {
			return c.Value, nil
		}
	}
	return "", fmt.Errorf("login response carried no session cookie")
}

func run(server, email, password string) error {
	sessionID, err := login(server, email, password)
	if err != nil {
		return err
	}

	url := "ws" + strings.TrimPrefix(server, "http") + "/api/chat/ws"
	header := http.Header{}
	header.Add("Cookie", cookieName+"="+sessionID)

	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	messageQueue := make(chan []byte)

	go func() {
		defer close(messageQueue)
		for {
			_, p, err := conn.ReadMessage()
			if err != nil {
				log.Println("read error:", err)
				return
			}

			messageQueue <- p
		}
	}()

	go func() {
		for message := range messageQueue {
			log.Printf("Received:\n%s\n", message)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		mJson, err := json.Marshal(Frame{Type: "message", Text: scanner.Text()})
		if err != nil {
			log.Println("json marshal error:", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, mJson); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
	return scanner.Err()
}

// Package main implements taskflow-watch, a terminal client that connects to
// the taskflow socket server and renders the frames pushed to the signed-in
// user: task changes and finished reports.
//
// Usage:
//
//	taskflow-watch -token <socket token>
//	taskflow-watch -api http://localhost:8080 -email me@example.com -password secret
//
// The token may also be supplied through TASKFLOW_SOCKET_TOKEN.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const tokenEnv = "TASKFLOW_SOCKET_TOKEN"

func main() {
	socketURL := flag.String("url", "ws://localhost:4000/socket", "socket server URL")
	token := flag.String("token", os.Getenv(tokenEnv), "socket token (default $"+tokenEnv+")")
	apiURL := flag.String("api", "http://localhost:8080", "API base URL used to sign in")
	email := flag.String("email", "", "sign in with this email when no token is given")
	password := flag.String("password", "", "password for -email")
	flag.Parse()

	if err := run(*socketURL, *token, *apiURL, *email, *password); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func run(socketURL, token, apiURL, email, password string) error {
	if token == "" {
		if email == "" || password == "" {
			return fmt.Errorf("a socket token or -email and -password are required")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var err error
		token, err = newAPIClient(apiURL).SocketToken(ctx, email, password)
		if err != nil {
			return err
		}
	}

	conn, err := dialSocket(socketURL, token)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = tea.NewProgram(newModel(conn, socketURL)).Run()
	return err
}

// Command client is a line-oriented terminal client for the AccessHub API.
// It drives the same session lifecycle a browser tab would: login persists
// the identity, inactivity expires it, and protected views are gated on the
// authenticated state.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"accesshub/internal/client/api"
	"accesshub/internal/client/guard"
	"accesshub/internal/client/session"
)

func main() {
	baseURL := flag.String("server", envDefault("ACCESSHUB_SERVER", "http://localhost:5000"), "backend base URL")
	flag.Parse()

	statePath, err := defaultStatePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve state path: %v\n", err)
		os.Exit(1)
	}

	client := api.New(*baseURL)
	mgr := session.NewManager(session.NewFileStore(statePath), session.DefaultIdleTimeout, func() {
		fmt.Println("\nsession expired, please log in again")
	})
	defer mgr.Close()

	// A 401 on any authenticated call means the server no longer accepts the
	// token; treat it as an implicit logout.
	client.OnUnauthorized = mgr.Invalidate

	if err := mgr.Restore(); err != nil {
		fmt.Fprintf(os.Stderr, "restore session: %v\n", err)
	}
	if u := mgr.User(); u != nil {
		fmt.Printf("welcome back, %s\n", u.Username)
	}

	repl(client, mgr)
}

func repl(client *api.Client, mgr *session.Manager) {
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)

	whoami := guard.Require(mgr, func() string {
		u := mgr.User()
		if u == nil {
			// Session can expire between the guard check and the render.
			return "not logged in"
		}
		return fmt.Sprintf("%s <%s> role=%s", u.Username, u.Email, u.Role)
	}, func() string {
		return "not logged in"
	})

	fmt.Println("accesshub client; type 'help' for commands")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		// Every entered command counts as user activity.
		mgr.Touch()

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help":
			fmt.Println("commands: register <email> <username> <password> | login <email> <password> | whoami | users | rm <id> | profile <username> [password] | logout | quit")
		case "register":
			if len(fields) != 4 {
				fmt.Println("usage: register <email> <username> <password>")
				continue
			}
			payload, err := client.Register(ctx, fields[1], fields[2], fields[3])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if err := mgr.Login(payload.User, payload.Token); err != nil {
				fmt.Println("warning: session not persisted:", err)
			}
			fmt.Printf("registered as %s\n", payload.User.Username)
		case "login":
			if len(fields) != 3 {
				fmt.Println("usage: login <email> <password>")
				continue
			}
			payload, err := client.Login(ctx, fields[1], fields[2])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if err := mgr.Login(payload.User, payload.Token); err != nil {
				fmt.Println("warning: session not persisted:", err)
			}
			fmt.Printf("logged in as %s\n", payload.User.Username)
		case "whoami":
			fmt.Println(whoami())
		case "users":
			users, err := client.Users(ctx, mgr.Token())
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			for _, u := range users {
				fmt.Printf("%s  %-20s %-30s %s\n", u.ID, u.Username, u.Email, u.Role)
			}
		case "rm":
			if len(fields) != 2 {
				fmt.Println("usage: rm <id>")
				continue
			}
			if err := client.DeleteUser(ctx, fields[1], mgr.Token()); err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println("user deleted")
		case "profile":
			if len(fields) < 2 || len(fields) > 3 {
				fmt.Println("usage: profile <username> [password]")
				continue
			}
			update := api.ProfileUpdate{Username: fields[1]}
			if len(fields) == 3 {
				update.Password = fields[2]
			}
			user, err := client.UpdateProfile(ctx, mgr.Token(), update)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if err := mgr.UpdateUser(session.UserUpdate{Username: user.Username}); err != nil {
				fmt.Println("warning: session not persisted:", err)
			}
			fmt.Printf("profile updated: %s\n", user.Username)
		case "logout":
			mgr.Logout()
			fmt.Println("logged out")
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command; type 'help'")
		}
	}
}

func defaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "accesshub", "session.json"), nil
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
)

// CLIHttp is the interactive client for a running analytics server
type CLIHttp struct {
	rl      *readline.Instance
	running bool
	client  *Client
	servers *Config
	out     io.Writer
}

// NewCLIHttp creates a new HTTP client CLI instance
func NewCLIHttp(serverURL string) (*CLIHttp, error) {
	client := NewClient(serverURL)

	// Test connectivity
	if _, err := client.HealthCheck(); err != nil {
		return nil, fmt.Errorf("cannot connect to server: %v", err)
	}

	// Saved servers are optional; the CLI works without them
	servers, err := LoadConfig()
	if err != nil {
		fmt.Printf("Warning: server list unavailable: %v\n", err)
	}

	// Create readline instance; ignore Ctrl+C
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "? ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %v", err)
	}

	return &CLIHttp{
		rl:      rl,
		running: true,
		client:  client,
		servers: servers,
		out:     os.Stdout,
	}, nil
}

// Start runs the CLI loop
func (c *CLIHttp) Start() {
	defer c.rl.Close()
	c.printWelcome()

	for c.running {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				fmt.Fprintln(c.out, "\n⚠ Ctrl+C detected. Please use 'exit' or 'quit' command to exit gracefully.")
				continue
			}
			// EOF or other error; exit
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		c.handleCommand(input)
	}
}

// printWelcome prints initial banner
func (c *CLIHttp) printWelcome() {
	PrintBanner(c.out, "SaaS Analytics Assistant - CLI")
	fmt.Fprintf(c.out, "\nConnected to: %s\n", c.client.BaseURL())
	fmt.Fprintln(c.out, "Ask a question in plain English, or type 'help' for commands")
}

// handleCommand routes user commands. Input that is not a command is sent
// as a question.
func (c *CLIHttp) handleCommand(input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "h":
		c.showHelp()
	case "ask":
		if len(args) == 0 {
			fmt.Fprintln(c.out, "Usage: ask <question>")
			return
		}
		c.ask(strings.Join(args, " "))
	case "seed", "generate":
		c.handleSeedCommand()
	case "init":
		c.handleInitCommand()
	case "health", "status", "st":
		c.handleHealthCommand()
	case "errors":
		c.handleErrorsCommand(args)
	case "server", "servers":
		c.handleServerCommand(args)
	case "clear":
		c.clearScreen()
	case "exit", "quit", "q":
		c.handleExit()
	default:
		c.ask(input)
	}
}

// showHelp prints available commands
func (c *CLIHttp) showHelp() {
	fmt.Fprintln(c.out)
	PrintBanner(c.out, "Available Commands")
	fmt.Fprintln(c.out)

	commands := [][]string{
		{"<question>", "Ask a question, e.g. 'What is our MRR by plan?'"},
		{"ask <question>", "Same as above, for questions that start with a command word"},
		{"", ""},
		{"DATA:", ""},
		{"init", "Seed sample data if the database is empty"},
		{"seed", "Add another batch of sample data"},
		{"", ""},
		{"SERVER:", ""},
		{"health", "Show server health"},
		{"errors [clear]", "List or clear recent server errors"},
		{"server list", "List saved servers"},
		{"server add <name> <url> [desc]", "Save a server"},
		{"server use <name>", "Switch to a saved server"},
		{"server remove <name>", "Forget a saved server"},
		{"", ""},
		{"SYSTEM:", ""},
		{"help, h", "Show this help message"},
		{"clear", "Clear screen"},
		{"exit, quit, q", "Exit the program"},
	}

	for _, cmd := range commands {
		if len(cmd) == 2 && cmd[0] != "" {
			fmt.Fprintf(c.out, "  %-32s %s\n", cmd[0], cmd[1])
		} else {
			fmt.Fprintln(c.out)
		}
	}
}

func (c *CLIHttp) ask(question string) {
	fmt.Fprintln(c.out, "Thinking...")
	resp, err := c.client.Ask(question)
	if err != nil {
		fmt.Fprintf(c.out, "❌ Error: %v\n", err)
		return
	}
	if !resp.Success || resp.Result == nil {
		fmt.Fprintf(c.out, "❌ %s\n", resp.Error)
		return
	}
	renderResult(c.out, resp.Result)
}

func (c *CLIHttp) handleSeedCommand() {
	summary, err := c.client.GenerateData()
	if err != nil {
		fmt.Fprintf(c.out, "❌ Error generating data: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "✓ Generated %d users, %d subscriptions, %d events\n",
		summary.Users, summary.Subscriptions, summary.Events)
}

func (c *CLIHttp) handleInitCommand() {
	res, err := c.client.InitializeDatabase()
	if err != nil {
		fmt.Fprintf(c.out, "❌ Error initializing database: %v\n", err)
		return
	}
	if res.Generated != nil {
		fmt.Fprintf(c.out, "✓ %s: %d users, %d subscriptions, %d events\n",
			res.Message, res.Generated.Users, res.Generated.Subscriptions, res.Generated.Events)
		return
	}
	fmt.Fprintf(c.out, "✓ %s (%d users)\n", res.Message, res.UserCount)
}

func (c *CLIHttp) handleHealthCommand() {
	health, err := c.client.HealthCheck()
	if health == nil {
		fmt.Fprintf(c.out, "❌ %v\n", err)
		return
	}

	fmt.Fprintf(c.out, "Server:     %s\n", c.client.BaseURL())
	fmt.Fprintf(c.out, "Status:     %s\n", health.Status)
	fmt.Fprintf(c.out, "Database:   %s (healthy: %v)\n", health.Dialect, health.DBHealthy)
	fmt.Fprintf(c.out, "SQL cache:  %v\n", health.CacheEnabled)
	fmt.Fprintf(c.out, "Version:    %s\n", health.Version)
	if health.SampleDataGeneratedAt != "" {
		fmt.Fprintf(c.out, "Last seed:  %s\n", health.SampleDataGeneratedAt)
	}
	if err != nil {
		fmt.Fprintf(c.out, "⚠ %v\n", err)
	}
}

func (c *CLIHttp) handleErrorsCommand(args []string) {
	if len(args) > 0 && args[0] == "clear" {
		if err := c.client.ClearErrorLogs(); err != nil {
			fmt.Fprintf(c.out, "❌ Error: %v\n", err)
			return
		}
		fmt.Fprintln(c.out, "✓ Error logs cleared")
		return
	}

	logs, err := c.client.ListErrorLogs()
	if err != nil {
		fmt.Fprintf(c.out, "❌ Error: %v\n", err)
		return
	}
	if len(logs) == 0 {
		fmt.Fprintln(c.out, "No errors recorded.")
		return
	}

	fmt.Fprintf(c.out, "%-4s %-19s %-5s %-22s %-20s %s\n", "ID", "Time", "Level", "Kind", "Source", "Message")
	fmt.Fprintln(c.out, strings.Repeat("-", 110))
	for _, l := range logs {
		fmt.Fprintf(c.out, "%-4d %-19s %-5s %-22s %-20s %s\n",
			l.ID,
			l.Timestamp.Local().Format("2006-01-02 15:04:05"),
			l.Level,
			l.Kind,
			truncate(l.Source, 20),
			truncate(l.Message, 60),
		)
	}
}

func (c *CLIHttp) handleServerCommand(args []string) {
	if c.servers == nil {
		fmt.Fprintln(c.out, "Server list unavailable.")
		return
	}
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list", "ls":
		for _, name := range c.servers.ServerNames() {
			s := c.servers.Servers[name]
			marker := " "
			if name == c.servers.DefaultServer {
				marker = "*"
			}
			fmt.Fprintf(c.out, "%s %-12s %-32s %s\n", marker, name, s.URL, s.Description)
		}
	case "add":
		if len(args) < 3 {
			fmt.Fprintln(c.out, "Usage: server add <name> <url> [description]")
			return
		}
		if err := c.servers.AddServer(args[1], args[2], strings.Join(args[3:], " ")); err != nil {
			fmt.Fprintf(c.out, "❌ Error: %v\n", err)
			return
		}
		fmt.Fprintf(c.out, "✓ Server '%s' saved\n", args[1])
	case "use":
		if len(args) < 2 {
			fmt.Fprintln(c.out, "Usage: server use <name>")
			return
		}
		server, err := c.servers.GetServer(args[1])
		if err != nil {
			fmt.Fprintf(c.out, "❌ Error: %v\n", err)
			return
		}
		previous := c.client.BaseURL()
		c.client.SetBaseURL(server.URL)
		if _, err := c.client.HealthCheck(); err != nil {
			c.client.SetBaseURL(previous)
			fmt.Fprintf(c.out, "❌ Cannot reach %s: %v\n", server.URL, err)
			return
		}
		if err := c.servers.SetDefault(args[1]); err != nil {
			fmt.Fprintf(c.out, "⚠ Could not save default server: %v\n", err)
		}
		fmt.Fprintf(c.out, "✓ Connected to %s\n", server.URL)
	case "remove", "rm":
		if len(args) < 2 {
			fmt.Fprintln(c.out, "Usage: server remove <name>")
			return
		}
		if err := c.servers.RemoveServer(args[1]); err != nil {
			fmt.Fprintf(c.out, "❌ Error: %v\n", err)
			return
		}
		fmt.Fprintf(c.out, "✓ Server '%s' removed\n", args[1])
	default:
		fmt.Fprintf(c.out, "Unknown server command: %s\n", args[0])
	}
}

// clearScreen clears the terminal
func (c *CLIHttp) clearScreen() {
	fmt.Fprint(c.out, "\033[H\033[2J")
}

// handleExit exits the CLI
func (c *CLIHttp) handleExit() {
	fmt.Fprintln(c.out, "\nGoodbye!")
	c.running = false
}

package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// serverName is the key stylebind is registered under in MCP client configs.
const serverName = "stylebind"

// mcpTarget is a project-local MCP client config file stylebind can be
// registered in.
type mcpTarget struct {
	Name  string // shown to the user
	Path  string // relative to the working directory
	Key   string // member holding the server map
	Typed bool   // entries carry "type": "stdio"

	present func() bool
}

// serverConfig is the entry written under Key.
type serverConfig struct {
	Type    string   `json:"type,omitempty"`
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

// Replaceable in tests.
var (
	lookPathFunc = exec.LookPath
	statFunc     = os.Stat
)

func exists(path string) bool {
	_, err := statFunc(path)
	return err == nil
}

func onPath(binary string) bool {
	_, err := lookPathFunc(binary)
	return err == nil
}

var mcpTargets = []mcpTarget{
	{
		Name: "Claude Code", Path: ".mcp.json", Key: "mcpServers",
		present: func() bool { return onPath("claude") || exists(".mcp.json") },
	},
	{
		Name: "VS Code", Path: filepath.Join(".vscode", "mcp.json"), Key: "servers", Typed: true,
		present: func() bool { return exists(".vscode") },
	},
	{
		Name: "Cursor", Path: filepath.Join(".cursor", "mcp.json"), Key: "mcpServers",
		present: func() bool { return exists(".cursor") },
	},
}

func (a *app) setupCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "setup DOCUMENT",
		Short: "Register \"stylebind serve --watch DOCUMENT\" with this project's MCP clients",
		Long: `Register "stylebind serve --watch DOCUMENT" with this project's MCP clients.

Looks for .mcp.json (Claude Code), .vscode/mcp.json and .cursor/mcp.json in
the working directory and adds a stylebind server entry to each one that
does not have it yet. Other entries are kept as they are.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if _, err := statFunc(doc); err != nil {
				return fmt.Errorf("document: %w", err)
			}
			return runSetup(a.stdin, a.stdout, doc, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "register without asking")
	return cmd
}

// detectTargets returns the targets present in the working directory.
func detectTargets() []mcpTarget {
	var found []mcpTarget
	for _, t := range mcpTargets {
		if t.present() {
			found = append(found, t)
		}
	}
	return found
}

// runSetup registers document with every detected target, asking first
// unless yes is set. One scanner serves every question.
func runSetup(in io.Reader, out io.Writer, document string, yes bool) error {
	found := detectTargets()
	if len(found) == 0 {
		fmt.Fprintln(out, "No MCP client config found (.mcp.json, .vscode/ or .cursor/).")
		return nil
	}

	answers := bufio.NewScanner(in)
	for _, t := range found {
		if registered(t.Path, t.Key) {
			fmt.Fprintf(out, "%s: already registered in %s\n", t.Name, t.Path)
			continue
		}
		if !yes && !confirm(answers, out, fmt.Sprintf("%s: register in %s? [Y/n] ", t.Name, t.Path)) {
			fmt.Fprintf(out, "%s: skipped\n", t.Name)
			continue
		}
		if err := t.register(document); err != nil {
			return fmt.Errorf("%s: %w", t.Name, err)
		}
		fmt.Fprintf(out, "%s: registered in %s\n", t.Name, t.Path)
	}
	return nil
}

// confirm asks question and reads one answer. Empty input and EOF mean yes.
func confirm(answers *bufio.Scanner, out io.Writer, question string) bool {
	fmt.Fprint(out, question)
	if !answers.Scan() {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(answers.Text())) {
	case "", "y", "yes":
		return true
	default:
		return false
	}
}

// register writes the stylebind entry into the target's config file.
func (t mcpTarget) register(document string) error {
	existing, err := os.ReadFile(t.Path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	updated, err := addServer(existing, t.Key, t.entry(document))
	if err != nil {
		return fmt.Errorf("%s: %w", t.Path, err)
	}
	if updated == nil {
		return nil
	}
	if dir := filepath.Dir(t.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(t.Path, updated, 0644)
}

func (t mcpTarget) entry(document string) serverConfig {
	cfg := serverConfig{Command: serverName, Args: []string{"serve", "--watch", document}}
	if t.Typed {
		cfg.Type = "stdio"
	}
	return cfg
}

// registered reports whether the config at path lists stylebind under key.
func registered(path, key string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var config map[string]json.RawMessage
	if json.Unmarshal(data, &config) != nil {
		return false
	}
	var servers map[string]json.RawMessage
	if json.Unmarshal(config[key], &servers) != nil {
		return false
	}
	_, ok := servers[serverName]
	return ok
}

// addServer adds entry under config[key][serverName] and returns the new file
// contents, or nil when stylebind is already there. Other members are copied
// through without being decoded.
func addServer(existing []byte, key string, entry serverConfig) ([]byte, error) {
	var config map[string]json.RawMessage
	if len(bytes.TrimSpace(existing)) > 0 {
		if err := json.Unmarshal(existing, &config); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}
	if config == nil {
		config = make(map[string]json.RawMessage)
	}

	var servers map[string]json.RawMessage
	if raw, ok := config[key]; ok {
		if err := json.Unmarshal(raw, &servers); err != nil {
			return nil, fmt.Errorf("%q is not an object: %w", key, err)
		}
	}
	if servers == nil {
		servers = make(map[string]json.RawMessage)
	}
	if _, ok := servers[serverName]; ok {
		return nil, nil
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	servers[serverName] = raw
	if config[key], err = json.Marshal(servers); err != nil {
		return nil, err
	}

	out, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

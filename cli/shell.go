package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/yllada/nordvpn-manager/common"
)

var errExit = errors.New("exit")

// shellOnly lists commands that make no sense inside the shell.
var shellOnly = []string{"shell"}

func (c *CLI) shell(ctx context.Context, args []string) error {
	historyFile, err := common.HistoryPath()
	if err != nil {
		common.LogWarn("Shell history disabled: %v", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "nordvpn> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    c.completer(),
	})
	if err != nil {
		return fmt.Errorf("readline init: %w", err)
	}
	defer rl.Close()

	// Keep the palette chosen for stdout; readline wraps the terminal.
	c.out = rl.Stdout()
	fmt.Fprintf(c.out, "%s shell. Type 'help' for commands, 'exit' to quit.\n", common.AppName)

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			return err
		}

		if err := c.dispatch(ctx, line); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			fmt.Fprintln(rl.Stderr(), c.palette.failure(err.Error()))
		}
	}
}

// dispatch runs one shell line.
func (c *CLI) dispatch(ctx context.Context, line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	switch {
	case parts[0] == "exit" || parts[0] == "quit":
		return errExit
	case common.StringInSlice(parts[0], shellOnly):
		return fmt.Errorf("%w: %s is not available inside the shell", common.ErrUsage, parts[0])
	}
	return c.Run(ctx, parts)
}

// completer completes command names, setting names and, for connect and
// cities, the countries reported by the tool.
func (c *CLI) completer() *readline.PrefixCompleter {
	countries := readline.PcItemDynamic(c.completeCountries)
	settingNames := []readline.PrefixCompleterInterface{}
	for _, name := range []string{"technology", "protocol", "firewall", "killswitch", "cybersec",
		"obfuscate", "notify", "autoconnect", "ipv6", "dns"} {
		settingNames = append(settingNames, readline.PcItem(name))
	}

	var items []readline.PrefixCompleterInterface
	for _, cmd := range commands() {
		if common.StringInSlice(cmd.name, shellOnly) {
			continue
		}
		switch cmd.name {
		case "cities":
			items = append(items, readline.PcItem(cmd.name, countries))
		case "connect":
			items = append(items, readline.PcItem(cmd.name,
				readline.PcItem("-country", countries),
				readline.PcItem("-city"),
				readline.PcItem("-code"),
				readline.PcItem("-group"),
				readline.PcItem("-server"),
			))
		case "set":
			items = append(items, readline.PcItem(cmd.name, settingNames...))
		default:
			items = append(items, readline.PcItem(cmd.name))
		}
	}
	items = append(items, readline.PcItem("exit"))
	return readline.NewPrefixCompleter(items...)
}

func (c *CLI) completeCountries(string) []string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	countries, err := c.client.Countries(ctx)
	if err != nil {
		common.LogDebug("Country completion unavailable: %v", err)
		return nil
	}
	return countries
}

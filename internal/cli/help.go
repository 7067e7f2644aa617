package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Custom help styles - tape theme
var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TapeAmber).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(TapeOrange).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(TapeOrange).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(TapeAmber).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(TapeRed).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(WarmGray).
				Italic(true)
)

// Tagline is the one-line description shown under the title
const Tagline = "Decode, inspect and play Ogg Vorbis, MP3, WAV and FLAC assets from disk or zip packs."

// StyledHelpPrinter creates a custom help printer with Lipgloss styling
func StyledHelpPrinter(options kong.HelpOptions) kong.HelpPrinter {
	return kong.HelpPrinter(func(options kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		// Title and description
		sb.WriteString(helpTitleStyle.Render("Tapedeck ▶"))
		sb.WriteString("\n")
		sb.WriteString(helpDescStyle.Render(Tagline))
		sb.WriteString("\n")

		selected := ctx.Selected()

		// Usage
		sb.WriteString(helpSectionStyle.Render("Usage:"))
		sb.WriteString("\n  ")
		if selected != nil {
			sb.WriteString(fmt.Sprintf("%s %s", ctx.Model.Name, selected.Summary()))
			if selected.Help != "" {
				sb.WriteString("\n\n  ")
				sb.WriteString(selected.Help)
			}
		} else {
			sb.WriteString(fmt.Sprintf("%s <command> [flags]", ctx.Model.Name))
		}
		sb.WriteString("\n")

		// Commands section, only at the top level
		if selected == nil {
			commands := getCommands(ctx.Model.Node)
			if len(commands) > 0 {
				sb.WriteString("\n")
				sb.WriteString(helpSectionStyle.Render("Commands:"))
				sb.WriteString("\n")
				for _, cmd := range commands {
					sb.WriteString("  ")
					sb.WriteString(helpArgStyle.Render(fmt.Sprintf("%-32s", cmd.name)))
					if cmd.help != "" {
						sb.WriteString("  ")
						sb.WriteString(cmd.help)
					}
					sb.WriteString("\n")
				}
			}
		}

		// Arguments section
		if selected != nil {
			args := getArguments(selected)
			if len(args) > 0 {
				sb.WriteString("\n")
				sb.WriteString(helpSectionStyle.Render("Arguments:"))
				sb.WriteString("\n")
				for _, arg := range args {
					sb.WriteString("  ")
					sb.WriteString(helpArgStyle.Render(arg.name))
					if arg.help != "" {
						sb.WriteString("  ")
						sb.WriteString(arg.help)
					}
					sb.WriteString("\n")
				}
			}
		}

		// Flags section: the command's own flags, then the global ones
		flags := getFlags(ctx.Model.Node, selected)
		if len(flags) > 0 {
			sb.WriteString("\n")
			sb.WriteString(helpSectionStyle.Render("Flags:"))
			sb.WriteString("\n")
			for _, flag := range flags {
				sb.WriteString("  ")
				sb.WriteString(helpFlagStyle.Render(flag.flags))
				if flag.help != "" {
					sb.WriteString("  ")
					sb.WriteString(flag.help)
				}
				if flag.defaultVal != "" {
					sb.WriteString(" ")
					sb.WriteString(helpDefaultStyle.Render("(default: " + flag.defaultVal + ")"))
				}
				sb.WriteString("\n")
			}
		}

		if selected == nil {
			sb.WriteString("\n")
			sb.WriteString(fmt.Sprintf("Run \"%s <command> --help\" for more information on a command.\n", ctx.Model.Name))
		}

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	})
}

type command struct {
	name string
	help string
}

type argument struct {
	name string
	help string
}

type flag struct {
	flags      string
	help       string
	defaultVal string
}

func getCommands(root *kong.Node) []command {
	var commands []command
	for _, child := range root.Children {
		if child.Hidden || child.Type != kong.CommandNode {
			continue
		}
		commands = append(commands, command{name: child.Summary(), help: child.Help})
	}
	return commands
}

func getArguments(node *kong.Node) []argument {
	var args []argument
	for _, arg := range node.Positional {
		args = append(args, argument{name: arg.Summary(), help: arg.Help})
	}
	return args
}

func getFlags(root, selected *kong.Node) []flag {
	var flags []flag

	// Always include help flag
	flags = append(flags, flag{
		flags: "-h, --help",
		help:  "Show context-sensitive help.",
	})

	var nodeFlags []*kong.Flag
	if selected != nil {
		nodeFlags = append(nodeFlags, selected.Flags...)
	}
	nodeFlags = append(nodeFlags, root.Flags...)

	for _, f := range nodeFlags {
		if f.Name == "help" || f.Hidden {
			continue // Already added
		}

		flagStr := ""
		if f.Short != 0 {
			flagStr = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
		} else {
			flagStr = fmt.Sprintf("--%s", f.Name)
		}

		if !f.IsBool() && f.PlaceHolder != "" {
			flagStr += "=" + strings.ToUpper(f.PlaceHolder)
		}

		// Only show default if it's a meaningful value (not empty, not type placeholder)
		defaultVal := ""
		if f.HasDefault && !f.IsBool() {
			val := f.Default
			if val != "" && val != "STRING" && val != "BOOL" {
				defaultVal = val
			}
		}

		flags = append(flags, flag{
			flags:      flagStr,
			help:       f.Help,
			defaultVal: defaultVal,
		})
	}

	return flags
}

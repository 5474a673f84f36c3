package bot

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrDuplicateTextCommand is returned when two text commands share a name or alias.
var ErrDuplicateTextCommand = errors.New("duplicate text command")

// TextRouter matches prefixed messages to text commands.
// Command names and aliases are case insensitive.
type TextRouter struct {
	prefix   string
	commands map[string]TextCommand
}

// NewTextRouter creates a TextRouter for the given prefix.
func NewTextRouter(prefix string) *TextRouter {
	return &TextRouter{
		prefix:   prefix,
		commands: make(map[string]TextCommand),
	}
}

// Add registers a command under its name and every alias.
func (r *TextRouter) Add(cmd TextCommand) error {
	names := append([]string{cmd.Name}, cmd.Aliases...)
	for _, name := range names {
		key := strings.ToLower(name)
		if existing, ok := r.commands[key]; ok {
			return fmt.Errorf("%w: %q (%s, %s)", ErrDuplicateTextCommand, key, existing.Name, cmd.Name)
		}
	}
	for _, name := range names {
		r.commands[strings.ToLower(name)] = cmd
	}
	return nil
}

// Len returns the number of registered names, aliases included.
func (r *TextRouter) Len() int {
	return len(r.commands)
}

// Match parses content addressed to the bot, either with the prefix or by
// mentioning botID, and returns the command and its argument string.
func (r *TextRouter) Match(content, botID string) (TextCommand, string, bool) {
	rest, ok := r.stripPrefix(strings.TrimSpace(content), botID)
	if !ok {
		return TextCommand{}, "", false
	}

	rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
	name, args, _ := strings.Cut(rest, " ")
	if i := strings.IndexFunc(name, unicode.IsSpace); i >= 0 {
		name, args = name[:i], name[i+1:]+" "+args
	}

	cmd, ok := r.commands[strings.ToLower(name)]
	if !ok {
		return TextCommand{}, "", false
	}
	return cmd, strings.TrimSpace(args), true
}

func (r *TextRouter) stripPrefix(content, botID string) (string, bool) {
	if botID != "" {
		for _, mention := range []string{"<@" + botID + ">", "<@!" + botID + ">"} {
			if rest, ok := strings.CutPrefix(content, mention); ok {
				return rest, true
			}
		}
	}
	if r.prefix != "" {
		if rest, ok := strings.CutPrefix(content, r.prefix); ok {
			return rest, true
		}
	}
	return "", false
}

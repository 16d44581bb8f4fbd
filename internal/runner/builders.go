package runner

import "strings"

// PowerShell wraps script in a non-interactive powershell invocation. bin
// defaults to "powershell" when empty.
func PowerShell(bin, script string) Command {
	if bin == "" {
		bin = "powershell"
	}
	return Command{Name: bin, Args: []string{"-NoProfile", "-NonInteractive", "-Command", script}}
}

// QuotePS renders s as a single-quoted PowerShell string literal.
func QuotePS(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Privileged prefixes the command with a non-interactive sudo when sudo is
// true. A password prompt then fails fast as a permission error instead of
// hanging the caller.
func Privileged(sudo bool, name string, args ...string) Command {
	if !sudo {
		return Command{Name: name, Args: args}
	}
	return Command{Name: "sudo", Args: append([]string{"-n", name}, args...)}
}

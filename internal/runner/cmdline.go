package runner

import "strings"

// cmdMeta are the characters cmd.exe gives meaning to on a command line.
const cmdMeta = "()[]%!^\"`<>&|;, *?"

// CommandLine renders the full cmd.exe command line that runs the .cmd shim
// of the package manager name with args. It is passed to the process
// verbatim, so every argument survives both cmd.exe and the shim's own %*
// expansion unchanged.
func CommandLine(name string, args []string) string {
	words := make([]string, 0, len(args)+1)
	words = append(words, name+".cmd")
	for _, arg := range args {
		words = append(words, quoteForCmd(arg))
	}
	return `cmd.exe /d /s /c "` + strings.Join(words, " ") + `"`
}

// quoteForCmd quotes arg for the C runtime argument parser and then
// caret-escapes the result twice: once for cmd.exe and once for the batch
// file it launches.
func quoteForCmd(arg string) string {
	return caretEscape(caretEscape(quoteArg(arg)))
}

// quoteArg wraps arg in double quotes using the C runtime rules: a run of
// backslashes is doubled when it precedes a quote.
func quoteArg(arg string) string {
	var b strings.Builder
	b.WriteByte('"')
	slashes := 0
	for _, r := range arg {
		switch r {
		case '\\':
			slashes++
			continue
		case '"':
			b.WriteString(strings.Repeat(`\`, 2*slashes+1))
		default:
			b.WriteString(strings.Repeat(`\`, slashes))
		}
		slashes = 0
		b.WriteRune(r)
	}
	b.WriteString(strings.Repeat(`\`, 2*slashes))
	b.WriteByte('"')
	return b.String()
}

func caretEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(cmdMeta, r) {
			b.WriteByte('^')
		}
		b.WriteRune(r)
	}
	return b.String()
}

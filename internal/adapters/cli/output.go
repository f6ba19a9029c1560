package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	gray   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	bold   = lipgloss.NewStyle().Bold(true)
)

type Output struct {
	enableColors bool
	out          io.Writer
	errOut       io.Writer
}

func NewOutput() *Output {
	return &Output{
		enableColors: isTerminal(),
		out:          os.Stdout,
		errOut:       os.Stderr,
	}
}

// NewWriterOutput writes uncolored output to w, used by tests and when
// output is piped.
func NewWriterOutput(w io.Writer) *Output {
	return &Output{out: w, errOut: w}
}

func (o *Output) DisableColors() {
	o.enableColors = false
}

func (o *Output) style(s lipgloss.Style, text string) string {
	if !o.enableColors {
		return text
	}
	return s.Render(text)
}

func (o *Output) Green(text string) string {
	return o.style(green, text)
}

func (o *Output) Yellow(text string) string {
	return o.style(yellow, text)
}

func (o *Output) Red(text string) string {
	return o.style(red, text)
}

func (o *Output) Gray(text string) string {
	return o.style(gray, text)
}

func (o *Output) Writer() io.Writer {
	return o.out
}

func (o *Output) ErrWriter() io.Writer {
	return o.errOut
}

func (o *Output) PrintHeader(msg string) {
	fmt.Fprintln(o.out, o.style(bold, msg))
	fmt.Fprintln(o.out)
}

func (o *Output) PrintStep(emoji, msg string, args ...any) {
	prefix := "  "
	if emoji != "" {
		prefix += emoji + " "
	}
	fmt.Fprintf(o.out, prefix+msg+"\n", args...)
}

func (o *Output) PrintSuccess(msg string, args ...any) {
	formatted := fmt.Sprintf(msg, args...)
	fmt.Fprintf(o.out, "  "+o.Green("✓ ")+"%s\n", formatted)
}

func (o *Output) PrintWarning(msg string, args ...any) {
	formatted := fmt.Sprintf(msg, args...)
	fmt.Fprintf(o.out, "  "+o.Yellow("⚠ ")+"%s\n", formatted)
}

func (o *Output) PrintError(msg string, args ...any) {
	formatted := fmt.Sprintf(msg, args...)
	fmt.Fprintf(o.errOut, "  "+o.Red("✗ ")+"%s\n", formatted)
}

func (o *Output) PrintFile(path string) {
	fmt.Fprintf(o.out, "    %s\n", path)
}

func (o *Output) PrintDone(msg string) {
	fmt.Fprintln(o.out, msg)
}

func isTerminal() bool {
	stat, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == os.ModeCharDevice
}

// Command client sends a prompt and optional image to the video service
// as a chat completion, then downloads the video it links to.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-errors/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ellypaws/video2world/pkg/library"
	"github.com/ellypaws/video2world/pkg/llm"
)

const defaultOut = "result.mp4"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	server string
	prompt string
	image  string
	out    string
}

// run returns the process exit code: 0 on success, 1 on any failure, 2 on bad usage.
func run(args []string, stdout, stderr io.Writer) int {
	_ = godotenv.Load()

	server := library.DefaultHost.String()
	if s := os.Getenv("VIDEO_SERVER"); s != "" {
		server = s
	}

	out := newPrinter(stdout, stderr)

	var opts options
	var failed error
	cmd := &cobra.Command{
		Use:           "client --prompt TEXT [--image PATH] [--out PATH]",
		Short:         "Generate a video from a prompt and an optional image, then download it",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(*cobra.Command, []string) error {
			failed = generate(library.NewClient(), opts, out)
			return failed
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.server, "server", server, "base URL of the video service (env VIDEO_SERVER)")
	flags.StringVar(&opts.prompt, "prompt", "", "text prompt")
	flags.StringVar(&opts.image, "image", "", "path to a .jpg, .jpeg, .png or .gif to send with the prompt")
	flags.StringVar(&opts.out, "out", defaultOut, "where to write the downloaded video")
	_ = cmd.MarkFlagRequired("prompt")

	// a nil slice makes cobra fall back to os.Args
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		if failed != nil {
			out.fail(failed)
			return 1
		}
		fmt.Fprintln(stderr, "Error:", err)
		fmt.Fprint(stderr, cmd.UsageString())
		return 2
	}
	return 0
}

// unexpectedResponse carries the raw body so it can be shown to the user.
type unexpectedResponse struct {
	err  error
	body []byte
}

func (e *unexpectedResponse) Error() string {
	return e.err.Error()
}

func (e *unexpectedResponse) Unwrap() error {
	return e.err
}

func generate(c *http.Client, opts options, out *printer) error {
	parts := []llm.Part{llm.Text(opts.prompt)}
	if opts.image != "" {
		uri, err := imageDataURI(opts.image)
		if err != nil {
			return err
		}
		parts = append(parts, llm.Image(uri))
	}

	host, err := library.FromString(opts.server)
	if err != nil {
		return errors.WrapPrefix(err, "invalid --server", 0)
	}

	body, err := host.PostChatCompletions(c, llm.Request{
		Model:    llm.DefaultModel,
		Messages: []llm.Message{llm.UserMessage(parts...)},
	})
	if err != nil {
		return requestError(err)
	}

	videoURL, err := library.VideoURL(body)
	if err != nil {
		return &unexpectedResponse{err: err, body: body}
	}
	out.info("Video URL:", videoURL)

	video, err := library.Download(c, videoURL)
	if err != nil {
		return errors.WrapPrefix(err, "Download failed", 0)
	}

	if err := os.WriteFile(opts.out, video, 0o644); err != nil {
		return errors.WrapPrefix(err, "Failed to write video", 0)
	}

	path, err := filepath.Abs(opts.out)
	if err != nil {
		path = opts.out
	}
	out.info("Downloaded →", path)
	return nil
}

// imageDataURI fails before any network call when the image is missing or of an unsupported type.
func imageDataURI(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Errorf("Image not found: %s", path)
		}
		return "", err
	}
	if info.IsDir() {
		return "", errors.Errorf("Image not found: %s is a directory", path)
	}

	uri, err := llm.FileDataURI(path)
	if err != nil {
		if errors.Is(err, llm.ErrUnsupportedImage) {
			return "", errors.Errorf("Unsupported image format %q, use .jpg, .jpeg, .png or .gif", filepath.Ext(path))
		}
		return "", err
	}
	return uri, nil
}

func requestError(err error) error {
	var decode *library.DecodeError
	if errors.As(err, &decode) {
		return errors.Errorf("Invalid JSON response: %s", decode.Error())
	}
	return errors.WrapPrefix(err, "Request failed", 0)
}

type printer struct {
	stdout, stderr io.Writer
	label, bad     lipgloss.Style
	muted          lipgloss.Style
}

func newPrinter(stdout, stderr io.Writer) *printer {
	outRenderer := lipgloss.NewRenderer(stdout)
	errRenderer := lipgloss.NewRenderer(stderr)
	return &printer{
		stdout: stdout,
		stderr: stderr,
		label:  outRenderer.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa7c7")),
		bad:    errRenderer.NewStyle().Bold(true).Foreground(lipgloss.Color("#e06c75")),
		muted:  errRenderer.NewStyle().Faint(true),
	}
}

func (p *printer) info(label, value string) {
	fmt.Fprintln(p.stdout, p.label.Render(label), value)
}

func (p *printer) fail(err error) {
	fmt.Fprintln(p.stderr, p.bad.Render("error:"), err.Error())

	var unexpected *unexpectedResponse
	if errors.As(err, &unexpected) {
		var indented bytes.Buffer
		if json.Indent(&indented, unexpected.body, "", "  ") != nil {
			indented.Reset()
			indented.Write(unexpected.body)
		}
		fmt.Fprintln(p.stderr, p.muted.Render(indented.String()))
	}
}

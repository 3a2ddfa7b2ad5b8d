// Package mdprog implements the subprogram that renders Markdown files, or the
// standard input, to HTML.
package mdprog

import (
	"fmt"
	"io"
	"os"

	"src.snudown.dev/pkg/config"
	"src.snudown.dev/pkg/errutil"
	"src.snudown.dev/pkg/logutil"
	"src.snudown.dev/pkg/md"
	"src.snudown.dev/pkg/prog"
	"src.snudown.dev/pkg/sys"
)

var logger = logutil.GetLogger("[mdprog] ")

const terminalHint = "Reading Markdown from the terminal; end the input with Ctrl-D."

// Program is the rendering subprogram. It is always suitable, so it should
// come last in a composite program.
type Program struct{}

func (Program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	mode, opts, err := settings(f)
	if err != nil {
		return err
	}
	logger.Printf("mode %v, options %+v", mode, opts)

	if len(args) == 0 {
		if sys.IsATTY(fds[0]) {
			fmt.Fprintln(fds[2], terminalHint)
		}
		src, err := io.ReadAll(fds[0])
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		return render(fds[1], string(src), mode, opts, f.Trace)
	}
	// Files are rendered separately, so that link references do not leak from
	// one to another. Unreadable files are skipped and reported at the end.
	var errs []error
	for _, name := range args {
		src, err := os.ReadFile(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		logger.Printf("rendering %s, %d bytes", name, len(src))
		if err := render(fds[1], string(src), mode, opts, f.Trace); err != nil {
			return err
		}
	}
	return errutil.Multi(errs...)
}

func render(w io.Writer, src string, mode md.Mode, opts md.Options, trace bool) error {
	var out string
	if trace {
		if out = md.Trace(md.Parse(src, mode)); out != "" {
			out += "\n"
		}
	} else {
		out = md.RenderMode(src, mode, opts)
	}
	_, err := io.WriteString(w, out)
	return err
}

// Combines settings from the config file, if any, with those from the command
// line. Flags given on the command line win.
func settings(f *prog.Flags) (md.Mode, md.Options, error) {
	var cfg config.Config
	if f.Config != "" {
		var err error
		cfg, err = config.Load(f.Config)
		if err != nil {
			return 0, md.Options{}, err
		}
	}
	mode, opts := cfg.Mode, cfg.Options
	if f.IsSet("wiki") {
		mode = md.Default
		if f.Wiki {
			mode = md.Wiki
		}
	}
	if f.IsSet("nofollow") {
		opts.Nofollow = f.Nofollow
	}
	if f.IsSet("target") {
		opts.Target = f.Target
	}
	if f.IsSet("toc") {
		opts.EnableTOC = f.TOC
	}
	if f.IsSet("toc-prefix") {
		opts.TOCIDPrefix = f.TOCPrefix
	}
	return mode, opts, nil
}

// Package idman builds command lines for Internet Download Manager (IDMan.exe)
// and launches it as a child process.
//
//	req := idman.New().
//		SetSourceURL("https://www.tonec.com/download/idman317.exe").
//		SetDestinationFileName("Internet Download Manager.exe").
//		SetMode(idman.ModeSilent)
//	if err := req.Run(); err != nil {
//		// only a failure to start IDMan.exe ends up here
//	}
package idman

import (
	"strings"
)

// DefaultToolPath is the default IDMan.exe install location used by New.
// Installs elsewhere can either change it once or call SetToolPath per request.
var DefaultToolPath = `C:\Program Files (x86)\Internet Download Manager\IDMan.exe`

// IDM command line switches
const (
	FlagSilent   = "/n" // no questions asked
	FlagURL      = "/d"
	FlagPath     = "/p"
	FlagFileName = "/f"
)

// Mode controls whether IDM asks questions while adding a download.
type Mode int

const (
	ModeDefault Mode = iota
	// ModeSilent turns on the silent mode where IDM doesn't ask any questions.
	ModeSilent
)

func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeSilent:
		return "silent"
	}
	return "unknown"
}

// ParseMode converts "default" or "silent" (case-insensitive) to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return ModeDefault, true
	case "silent":
		return ModeSilent, true
	}
	return ModeDefault, false
}

// Request holds the settings for one IDM invocation.
// Nothing is validated here; IDM itself rejects bad URLs or paths.
type Request struct {
	toolPath string
	mode     Mode
	url      string
	destPath *string
	fileName *string
}

// New returns a request with the default tool path, default mode and no URL.
func New() *Request {
	return &Request{
		toolPath: DefaultToolPath,
		mode:     ModeDefault,
	}
}

// SetToolPath sets the full path to IDMan.exe, including the .exe.
func (r *Request) SetToolPath(path string) *Request {
	r.toolPath = path
	return r
}

// SetMode sets the download mode.
func (r *Request) SetMode(mode Mode) *Request {
	r.mode = mode
	return r
}

// SetSourceURL sets the url of the file to download.
func (r *Request) SetSourceURL(url string) *Request {
	r.url = url
	return r
}

// SetDestinationPath sets the directory the file is saved to.
// When unset, IDM picks the directory.
func (r *Request) SetDestinationPath(path string) *Request {
	r.destPath = &path
	return r
}

// SetDestinationFileName sets the saved file name. Include the extension;
// when unset, IDM detects the name itself.
func (r *Request) SetDestinationFileName(name string) *Request {
	r.fileName = &name
	return r
}

func (r *Request) ToolPath() string {
	return r.toolPath
}

func (r *Request) Mode() Mode {
	return r.mode
}

func (r *Request) SourceURL() string {
	return r.url
}

// DestinationPath returns the destination directory and whether it was set.
func (r *Request) DestinationPath() (string, bool) {
	if r.destPath == nil {
		return "", false
	}
	return *r.destPath, true
}

// DestinationFileName returns the destination file name and whether it was set.
func (r *Request) DestinationFileName() (string, bool) {
	if r.fileName == nil {
		return "", false
	}
	return *r.fileName, true
}

// Args builds the IDM arguments. The order is fixed:
// [/n] /d <url> [/p <path>] [/f <name>]
func (r *Request) Args() []string {
	args := make([]string, 0, 7)

	if r.mode == ModeSilent {
		args = append(args, FlagSilent)
	}

	args = append(args, FlagURL, r.url)

	if path, ok := r.DestinationPath(); ok {
		args = append(args, FlagPath, path)
	}
	if name, ok := r.DestinationFileName(); ok {
		args = append(args, FlagFileName, name)
	}

	return args
}

// String renders the command line, quoting tokens that contain spaces.
func (r *Request) String() string {
	parts := append([]string{r.toolPath}, r.Args()...)
	for i, p := range parts {
		if p == "" || strings.ContainsAny(p, " \t\"") {
			parts[i] = `"` + strings.ReplaceAll(p, `"`, `\"`) + `"`
		}
	}
	return strings.Join(parts, " ")
}

package vst2

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/plughost/internal/plugin"
	"github.com/smykla-skalski/plughost/internal/xdg"
	"github.com/smykla-skalski/plughost/pkg/pluginid"
)

// SubPluginSeparator introduces a shell sub-plugin selector in a plugin name.
const SubPluginSeparator = ':'

// PathEnvVar lists extra plugin directories separated by the OS list separator.
const PathEnvVar = "VST_PATH"

// Listing markers.
const (
	MarkerNoPlugins = "(No plugins found)"
	MarkerEmptyDir  = "(Empty or non-existent directory)"
)

// SplitName separates a sub-plugin selector from a plugin name. The separator only
// counts when no path separator follows it, so Windows drive letters and paths with
// colons in directory names are left alone. A dotted tail that is not a plugin code,
// as in "my:plugin.so", belongs to the file name.
func SplitName(name string) (base, selector string) {
	i := strings.LastIndexByte(name, SubPluginSeparator)
	if i < 0 {
		return name, ""
	}

	rest := name[i+1:]
	if strings.ContainsAny(rest, `/\`) {
		return name, ""
	}

	if strings.Contains(rest, ".") && len(rest) != pluginid.CodeLength {
		return name, ""
	}

	return name[:i], rest
}

// Extension returns the native plugin file extension for goos, without the dot.
func Extension(goos string) string {
	switch goos {
	case "darwin":
		return "vst"
	case "windows":
		return "dll"
	default:
		return "so"
	}
}

// Locator resolves plugin names to files.
type Locator struct {
	root string
	goos string

	getenv  func(string) string
	homeDir func() (string, error)
	workDir func() (string, error)
}

// NewLocator creates a locator searching root before the default locations.
func NewLocator(root string) *Locator {
	return &Locator{
		root:    root,
		goos:    runtime.GOOS,
		getenv:  os.Getenv,
		homeDir: os.UserHomeDir,
		workDir: os.Getwd,
	}
}

// Root returns the user-supplied plugin root.
func (l *Locator) Root() string {
	return l.root
}

// Extension returns the native plugin extension for the locator's OS.
func (l *Locator) Extension() string {
	return Extension(l.goos)
}

// DefaultLocations returns the default search directories in order: the working
// directory, user-level directories, system-level directories, then VST_PATH.
func (l *Locator) DefaultLocations() []string {
	var dirs []string

	if cwd, err := l.workDir(); err == nil {
		dirs = append(dirs, cwd)
	}

	home, homeErr := l.homeDir()

	switch l.goos {
	case "darwin":
		if homeErr == nil {
			dirs = append(dirs, filepath.Join(home, "Library", "Audio", "Plug-Ins", "VST"))
		}

		dirs = append(dirs, "/Library/Audio/Plug-Ins/VST")
	case "windows":
		for _, env := range []string{"ProgramFiles", "ProgramFiles(x86)"} {
			if base := l.getenv(env); base != "" {
				dirs = append(dirs,
					filepath.Join(base, "VstPlugins"),
					filepath.Join(base, "Steinberg", "VstPlugins"),
					filepath.Join(base, "Common Files", "VST2"),
				)
			}
		}
	default:
		if homeErr == nil {
			dirs = append(dirs, filepath.Join(home, ".vst"), filepath.Join(home, ".lxvst"))
		}

		dirs = append(dirs, "/usr/local/lib/vst", "/usr/lib/vst")
	}

	for _, dir := range filepath.SplitList(l.getenv(PathEnvVar)) {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}

	return dirs
}

// SearchPaths returns the root, when set, followed by the default locations.
func (l *Locator) SearchPaths() []string {
	paths := l.DefaultLocations()
	if l.root == "" {
		return paths
	}

	return append([]string{l.root}, paths...)
}

// Locate resolves name, which must not carry a sub-plugin selector, to the file to
// load and the directory it was found in. The first directory with a match wins.
func (l *Locator) Locate(name string) (path, location string, err error) {
	if name == "" {
		return "", "", errors.Wrap(plugin.ErrDiscovery, "empty plugin name")
	}

	name, err = xdg.ExpandPath(name)
	if err != nil {
		return "", "", err
	}

	if filepath.IsAbs(name) {
		for _, candidate := range l.candidates(name) {
			if resolved, ok := l.resolve(candidate); ok {
				return resolved, filepath.Dir(candidate), nil
			}
		}
	}

	searched := l.SearchPaths()

	for _, dir := range searched {
		for _, candidate := range l.candidates(filepath.Join(dir, name)) {
			if resolved, ok := l.resolve(candidate); ok {
				return resolved, dir, nil
			}
		}
	}

	return "", "", errors.Wrapf(plugin.ErrDiscovery, "%q not found in %s",
		name, strings.Join(searched, string(os.PathListSeparator)))
}

// candidates returns path as given and with the platform extension appended when
// it does not already end in it.
func (l *Locator) candidates(path string) []string {
	if strings.EqualFold(filepath.Ext(path), "."+l.Extension()) {
		return []string{path}
	}

	return []string{path, path + "." + l.Extension()}
}

// resolve checks that candidate exists and returns the file to map. macOS bundles
// resolve to the executable inside Contents/MacOS.
func (l *Locator) resolve(candidate string) (string, bool) {
	info, err := os.Stat(candidate)
	if err != nil {
		return "", false
	}

	if !info.IsDir() {
		return candidate, true
	}

	if !strings.EqualFold(filepath.Ext(candidate), ".vst") {
		return "", false
	}

	base := strings.TrimSuffix(filepath.Base(candidate), filepath.Ext(candidate))
	binary := filepath.Join(candidate, "Contents", "MacOS", base)

	if info, err := os.Stat(binary); err == nil && !info.IsDir() {
		return binary, true
	}

	return "", false
}

// LocationListing is the discovery report for one directory.
type LocationListing struct {
	Location string   `json:"location"         yaml:"location"`
	Plugins  []string `json:"plugins"          yaml:"plugins"`
	Marker   string   `json:"marker,omitempty" yaml:"marker,omitempty"`
}

// ListAvailable reports the native plugins found in every search path.
func (l *Locator) ListAvailable() []LocationListing {
	paths := l.SearchPaths()
	listings := make([]LocationListing, 0, len(paths))

	for _, dir := range paths {
		listings = append(listings, l.listLocation(dir))
	}

	return listings
}

func (l *Locator) listLocation(dir string) LocationListing {
	listing := LocationListing{Location: dir}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		listing.Marker = MarkerEmptyDir

		return listing
	}

	ext := l.Extension()

	matches, err := doublestar.Glob(os.DirFS(dir), "*."+ext, doublestar.WithCaseInsensitive())
	if err != nil {
		listing.Marker = MarkerEmptyDir

		return listing
	}

	sort.Strings(matches)

	for _, match := range matches {
		listing.Plugins = append(listing.Plugins, strings.TrimSuffix(match, filepath.Ext(match)))
	}

	if len(listing.Plugins) == 0 {
		listing.Marker = MarkerNoPlugins
	}

	return listing
}

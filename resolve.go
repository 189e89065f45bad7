package markup

import (
	"io/fs"
	"path"
	"strconv"
	"strings"
)

// ComponentKey identifies a component on disk. Dir is the folder the
// component's files live in, relative to the Site's fs.FS, and Name is the
// base name shared by the template, script, and stylesheet.
type ComponentKey struct {
	Dir  string
	Name string
}

// String returns the key as "dir/name". It's what the Registry stores.
func (key ComponentKey) String() string {
	return path.Join(key.Dir, key.Name)
}

func (key ComponentKey) file(ext string) string {
	return key.String() + ext
}

// normalizeName turns a logical component name like "cards.product" or
// "/cards/product/" into "cards/product".
func normalizeName(name string) string {
	return cleanName(strings.ReplaceAll(name, ".", "/"))
}

func cleanName(name string) string {
	return strings.Trim(path.Clean("/"+name), "/")
}

// ResolveComponent maps a logical component name to its location. Every
// segment but the last names a folder under the components (or snippets)
// root; the last segment is the component's base name. When a folder named
// after the component exists and holds the component's template, the
// component is looked up inside that folder instead, so both
// components/card.tmpl and components/card/card.tmpl resolve for "card".
func (s *Site) ResolveComponent(name string, snippet bool) ComponentKey {
	return s.resolveKey(normalizeName(name), snippet)
}

func (s *Site) resolveKey(clean string, snippet bool) ComponentKey {
	root := s.componentsDir
	if snippet {
		root = s.snippetsDir
	}
	segments := strings.Split(clean, "/")
	key := ComponentKey{
		Dir:  path.Join(append([]string{root}, segments[:len(segments)-1]...)...),
		Name: segments[len(segments)-1],
	}
	wrapped := ComponentKey{Dir: path.Join(key.Dir, key.Name), Name: key.Name}
	if s.exists(wrapped.file(s.ext)) {
		return wrapped
	}
	return key
}

// PathAndURL maps a filename to its path inside the Site's fs.FS and the
// public URL it's served at. The filename may be relative to the root of the
// fs.FS or may already be a URL under the Site's BaseURL.
func (s *Site) PathAndURL(filename string) (string, string) {
	if s.baseURLIsRooted() && s.baseURL != "/" && strings.HasPrefix(filename, s.baseURL) {
		return strings.TrimPrefix(filename, s.baseURL), filename
	}
	p := strings.TrimPrefix(path.Clean("/"+filename), "/")
	return p, s.baseURL + p
}

func (s *Site) exists(name string) bool {
	if s.fsys == nil {
		return false
	}
	info, err := fs.Stat(s.fsys, name)
	return err == nil && !info.IsDir()
}

// versionedURL resolves filename and appends a cache-busting version
// parameter built from the file's modification time. ok is false if the
// file doesn't exist.
func (s *Site) versionedURL(filename string) (string, bool) {
	p, u := s.PathAndURL(filename)
	if s.fsys == nil {
		return "", false
	}
	info, err := fs.Stat(s.fsys, p)
	if err != nil || info.IsDir() {
		return "", false
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + "v=" + strconv.FormatInt(info.ModTime().Unix(), 10), true
}

// assetSrc turns the filename passed to Script or Style into the src that
// gets registered. Absolute URLs are used verbatim; anything else is given
// ext if it lacks it, resolved inside the fs.FS, and versioned. ok is false
// if the file doesn't exist.
func (s *Site) assetSrc(filename, ext string) (string, bool) {
	if isAbsoluteURL(filename) {
		return filename, true
	}
	if !strings.HasSuffix(filename, ext) {
		filename += ext
	}
	return s.versionedURL(filename)
}

// baseURLIsRooted reports whether filenames can carry the BaseURL as a
// prefix. A relative BaseURL like "components/" can't be told apart from a
// folder inside the fs.FS, so it's never stripped.
func (s *Site) baseURLIsRooted() bool {
	return strings.HasPrefix(s.baseURL, "/") || isAbsoluteURL(s.baseURL)
}

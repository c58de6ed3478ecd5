package pages

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"website/internal/loader"
	"website/internal/markdown"
)

// ShellTemplate is the page shell that content-only pages are wrapped in.
const ShellTemplate = "templates/web.html"

const (
	markerNoBreadcrumbs = "<!-- no-breadcrumbs -->"
	markerNoHeader      = "<!-- no-header -->"
	markerNoCache       = "<!-- no-cache -->"
)

var (
	titleCommentPattern = regexp.MustCompile(`<!-- title:([^>]*) -->`)
	blockMarkerPattern  = regexp.MustCompile(`\{\{-?\s*(block|define)\s`)
	titleBlockPattern   = regexp.MustCompile(`\{\{-?\s*(block|define)\s+"title"`)
	headerBlockPattern  = regexp.MustCompile(`\{\{-?\s*(block|define)\s+"header"`)
)

// Builder turns a single file under a page root into a Descriptor.
type Builder struct {
	fs       afero.Fs
	loader   loader.Loader
	markdown markdown.Renderer
}

func NewBuilder(fs afero.Fs, l loader.Loader, md markdown.Renderer) *Builder {
	return &Builder{fs: fs, loader: l, markdown: md}
}

// BuildPageInfo derives route, template reference, controller and prepared
// source for fileName inside fileDir. rootPath is the page root the file was
// found under and appRootPath the root of the owning app.
func (b *Builder) BuildPageInfo(rootPath, fileDir, appName, appRootPath, fileName string) (Descriptor, error) {
	stem, ext, ok := splitExt(fileName)
	if !ok {
		return Descriptor{}, fmt.Errorf("page file %q has no extension", fileName)
	}

	info := Descriptor{App: appName, BaseName: fileName}
	if isContentExt(ext) {
		info.BaseName = stem
	}

	template, err := filepath.Rel(appRootPath, filepath.Join(fileDir, fileName))
	if err != nil {
		return Descriptor{}, fmt.Errorf("relative template path for %q: %w", fileName, err)
	}
	info.Template = filepath.ToSlash(template)

	if info.BaseName == "index" && filepath.Clean(fileDir) != filepath.Clean(rootPath) {
		info.BaseName = ""
	}

	relDir, err := filepath.Rel(rootPath, fileDir)
	if err != nil {
		return Descriptor{}, fmt.Errorf("relative page dir for %q: %w", fileName, err)
	}
	info.RouteName = routeName(filepath.ToSlash(relDir), info.BaseName)

	controllerDir, err := filepath.Rel(appRootPath, fileDir)
	if err != nil {
		return Descriptor{}, fmt.Errorf("relative controller dir for %q: %w", fileName, err)
	}
	info.Controller = controllerPath(appName, filepath.ToSlash(controllerDir), stem)

	if isContentExt(ext) {
		if err := b.loadSource(&info, fileDir, stem, ext); err != nil {
			return Descriptor{}, err
		}
	}
	if info.OnlyContent {
		loadProperties(&info)
	}

	return info, nil
}

func (b *Builder) loadSource(info *Descriptor, fileDir, stem, ext string) error {
	source, err := b.loader.GetAppSource(info.App, info.Template)
	if err != nil {
		return fmt.Errorf("load page source %q: %w", info.Template, err)
	}

	if ext == "md" {
		source, err = b.markdown.Render(source)
		if err != nil {
			return fmt.Errorf("render markdown %q: %w", info.Template, err)
		}
	}

	if strings.Contains(source, "</body>") || blockMarkerPattern.MatchString(source) {
		info.Source = source
		return nil
	}

	js := b.readSibling(filepath.Join(fileDir, stem+".js"))
	css := b.readSibling(filepath.Join(fileDir, stem+".css"))

	info.OnlyContent = true
	info.Source = wrapContent(source, js, css)
	return nil
}

// readSibling treats an unreadable asset the same as a missing one.
func (b *Builder) readSibling(name string) string {
	data, err := afero.ReadFile(b.fs, name)
	if err != nil || !utf8.Valid(data) {
		return ""
	}
	return string(data)
}

func wrapContent(source, js, css string) string {
	var out strings.Builder
	out.WriteString(`{{template "` + ShellTemplate + `" .}}`)
	if css != "" {
		out.WriteString("\n{{define \"style\"}}\n<style>\n" + css + "\n</style>\n{{end}}")
	}
	out.WriteString("\n{{define \"page_content\"}}\n" + source + "\n{{end}}")
	if js != "" {
		out.WriteString("\n{{define \"script\"}}<script>" + js + "\n</script>\n{{end}}")
	}
	return out.String()
}

// loadProperties reads title and flags from marker comments in a content-only
// page and appends the title and header blocks it is missing.
func loadProperties(info *Descriptor) {
	if match := titleCommentPattern.FindStringSubmatch(info.Source); match != nil {
		info.Title = strings.TrimSpace(match[1])
	} else {
		info.Title = titleFromRoute(info.RouteName)
	}

	if !titleBlockPattern.MatchString(info.Source) {
		info.Source += "\n{{define \"title\"}}" + info.Title + "{{end}}"
	}

	info.NoBreadcrumbs = strings.Contains(info.Source, markerNoBreadcrumbs)

	if strings.Contains(info.Source, markerNoHeader) {
		info.NoHeader = true
	} else if !headerBlockPattern.MatchString(info.Source) && !strings.Contains(info.Source, "<h1") {
		info.Source += "\n{{define \"header\"}}<h1>" + info.Title + "</h1>{{end}}"
	}

	info.NoCache = strings.Contains(info.Source, markerNoCache)
}

func titleFromRoute(route string) string {
	base := path.Base(route)
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return cases.Title(language.English).String(base)
}

func routeName(relDir, baseName string) string {
	name := path.Join(relDir, baseName)
	name = strings.Trim(name, "/")
	name = strings.Trim(name, ".")
	return strings.Trim(name, "/")
}

func controllerPath(appName, relDir, stem string) string {
	module := path.Join(relDir, strings.ReplaceAll(stem, "-", "_"))
	return appName + "." + strings.ReplaceAll(module, "/", ".")
}

func splitExt(fileName string) (string, string, bool) {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 {
		return "", "", false
	}
	return fileName[:idx], fileName[idx+1:], true
}

func isContentExt(ext string) bool {
	return ext == "html" || ext == "md"
}

// Package render executes every template of a directory against the
// aggregated entries and writes one output file per template.
//
// Templates use text/template: entry content was sanitized when it was loaded
// and must reach the output unescaped.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/samber/lo"

	"go-mars/internal/aggregate"
	"go-mars/internal/logx"
	"go-mars/internal/model"
)

// DateFormat is used by the "date" template function.
const DateFormat = "Mon Jan _2 15:04:05 2006"

// Pkg describes the program to templates.
type Pkg struct {
	Name     string
	Version  string
	Homepage string
	Authors  string
}

// Context is the template data.
type Context struct {
	Feeds   map[string]*model.Feed
	Entries []model.Entry
	Pkg     Pkg
}

// Renderer renders the templates of one directory into another.
type Renderer struct {
	templatesDir string
	outDir       string
	pkg          Pkg
}

func New(templatesDir, outDir string, pkg Pkg) *Renderer {
	return &Renderer{templatesDir: templatesDir, outDir: outDir, pkg: pkg}
}

// Write renders out_dir/<name> for every regular file in the templates dir.
func (r *Renderer) Write(res aggregate.Result) error {
	names, err := templateNames(r.templatesDir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		logx.Warnf("no templates found in %s", r.templatesDir)
		return nil
	}
	tmpl := template.New("").Funcs(Funcs(res.Feeds))
	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(r.templatesDir, name))
		if err != nil {
			return fmt.Errorf("read template %s: %w", name, err)
		}
		if _, err := tmpl.New(name).Parse(string(b)); err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
	}
	data := Context{Feeds: res.Feeds, Entries: res.Entries, Pkg: r.pkg}
	for _, name := range names {
		logx.Debugf("processing template %s", name)
		if err := r.renderOne(tmpl, name, data); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderOne(tmpl *template.Template, name string, data Context) error {
	path := filepath.Join(r.outDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := tmpl.ExecuteTemplate(f, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return f.Close()
}

func templateNames(dir string) ([]string, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read templates dir %s: %w", dir, err)
	}
	var names []string
	for _, de := range des {
		if de.Type().IsRegular() && !strings.HasPrefix(de.Name(), ".") {
			names = append(names, de.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Funcs returns the template functions. feeds backs the author fallback.
func Funcs(feeds map[string]*model.Feed) template.FuncMap {
	return template.FuncMap{
		"author": func(e model.Entry) string { return Author(e, feeds) },
		"date":   func(e model.Entry) string { return e.Time().Format(DateFormat) },
		"iso":    func(e model.Entry) string { return e.Time().UTC().Format(time.RFC3339) },
		"link": func(e model.Entry) string {
			if len(e.Links) == 0 {
				return ""
			}
			return e.Links[0].Href
		},
		"content": func(e model.Entry) string {
			if e.Content != "" {
				return e.Content
			}
			return e.Summary
		},
	}
}

// Author joins the usable author names of e. When e has none, the authors of
// its source feed are used.
func Author(e model.Entry, feeds map[string]*model.Feed) string {
	names := validNames(e.Authors)
	if len(names) == 0 {
		if f, ok := feeds[e.Source]; ok && f != nil {
			names = validNames(f.Authors)
		}
	}
	return strings.Join(names, ", ")
}

func validNames(ps []model.Person) []string {
	names := lo.Map(ps, func(p model.Person, _ int) string { return p.Name })
	return lo.Filter(names, func(n string, _ int) bool {
		return n != "" && n != "unknown" && n != "author"
	})
}

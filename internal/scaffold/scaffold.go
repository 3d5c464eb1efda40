// Package scaffold creates new email templates and the starter emails tree.
package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/nge-dev/nge/internal/codegen/common"
)

var (
	ErrTemplateExists = errors.New("email template already exists")
	ErrInvalidName    = errors.New("invalid template name")
)

// ParseName splits "./v1/welcome.vue" style input into the template name and
// its directory below the emails root.
func ParseName(input string) (name, subDir string, err error) {
	p := strings.TrimSpace(filepath.ToSlash(input))
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimSuffix(p, ".vue")
	p = strings.Trim(p, "/")

	parts := strings.Split(p, "/")
	name = parts[len(parts)-1]
	if !validName(name) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidName, input)
	}
	for _, part := range parts[:len(parts)-1] {
		if part == "" || part == "." || part == ".." {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidName, input)
		}
	}
	return name, path.Join(parts[:len(parts)-1]...), nil
}

func validName(name string) bool {
	if name == "" || name == common.PartialsDir {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

func isIdentifier(name string) bool {
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		return false
	}
	return !strings.Contains(name, "-")
}

// AddOptions tunes AddTemplate.
type AddOptions struct {
	// Dir is prepended to the directory parsed from the name.
	Dir string
	// Data also writes <name>.data.ts with an example request body.
	Data bool
}

// AddResult lists what AddTemplate wrote.
type AddResult struct {
	RelativePath string
	Files        []string
}

type scaffoldFile struct {
	path    string
	content string
	// keep leaves an existing file alone instead of writing it.
	keep bool
}

// AddTemplate writes <name>.vue and <name>.mjml below emailsDir. It refuses
// to overwrite an existing .vue file; an existing .mjml file is kept.
func AddTemplate(fs afero.Fs, emailsDir, input string, opts AddOptions) (AddResult, error) {
	name, subDir, err := ParseName(input)
	if err != nil {
		return AddResult{}, err
	}
	dir := strings.Trim(filepath.ToSlash(opts.Dir), "/")
	if strings.Contains("/"+dir+"/", "/../") {
		return AddResult{}, fmt.Errorf("%w: directory %q leaves the emails directory", ErrInvalidName, opts.Dir)
	}
	rel := common.RelativePath(path.Join(dir, subDir), name)
	if strings.HasPrefix(rel, common.PartialsDir+"/") {
		return AddResult{}, fmt.Errorf("%w: %s/ holds partials, not templates", ErrInvalidName, common.PartialsDir)
	}

	targetDir := filepath.Join(emailsDir, filepath.FromSlash(path.Dir(rel)))
	vueFile := filepath.Join(targetDir, name+".vue")
	if ok, _ := afero.Exists(fs, vueFile); ok {
		return AddResult{}, fmt.Errorf("%w: %s", ErrTemplateExists, vueFile)
	}
	if err := fs.MkdirAll(targetDir, 0o755); err != nil {
		return AddResult{}, fmt.Errorf("create %s: %w", targetDir, err)
	}

	data := newTemplateData(name, rel)
	files := []scaffoldFile{
		{path: filepath.Join(targetDir, name+".mjml"), content: execute(mjmlTmpl, data), keep: true},
		{path: vueFile, content: execute(vueTmpl, data)},
	}
	if opts.Data {
		files = append(files, scaffoldFile{path: filepath.Join(targetDir, name+".data.ts"), content: execute(dataTmpl, data), keep: true})
	}

	res := AddResult{RelativePath: rel}
	for _, f := range files {
		if f.keep {
			if ok, _ := afero.Exists(fs, f.path); ok {
				continue
			}
		}
		if err := afero.WriteFile(fs, f.path, []byte(f.content), 0o644); err != nil {
			return res, fmt.Errorf("write %s: %w", f.path, err)
		}
		res.Files = append(res.Files, f.path)
	}
	return res, nil
}

// SetupResult lists the starter files by path relative to the emails dir.
type SetupResult struct {
	Created []string
	Skipped []string
}

var starterFiles = []struct {
	rel     string
	content string
}{
	{rel: common.PartialsDir + "/header.mjml", content: headerPartial},
	{rel: common.PartialsDir + "/divider.mjml", content: dividerPartial},
	{rel: common.PartialsDir + "/footer.mjml", content: footerPartial},
	{rel: "example.mjml", content: exampleMjml},
	{rel: "example.vue", content: exampleVue},
}

// Setup creates the emails tree with the partials and an example template.
// Existing files are never overwritten.
func Setup(fs afero.Fs, emailsDir string) (SetupResult, error) {
	var res SetupResult
	if err := fs.MkdirAll(filepath.Join(emailsDir, common.PartialsDir), 0o755); err != nil {
		return res, fmt.Errorf("create %s: %w", emailsDir, err)
	}
	for _, f := range starterFiles {
		p := filepath.Join(emailsDir, filepath.FromSlash(f.rel))
		if ok, _ := afero.Exists(fs, p); ok {
			res.Skipped = append(res.Skipped, f.rel)
			continue
		}
		if err := afero.WriteFile(fs, p, []byte(f.content), 0o644); err != nil {
			return res, fmt.Errorf("write %s: %w", p, err)
		}
		res.Created = append(res.Created, f.rel)
	}
	return res, nil
}

// ListDirectories returns every directory below emailsDir that can hold
// templates, relative and slash separated. Partials and hidden directories
// are left out. A missing emailsDir yields nothing.
func ListDirectories(fs afero.Fs, emailsDir string) ([]string, error) {
	if ok, _ := afero.DirExists(fs, emailsDir); !ok {
		return nil, nil
	}
	var dirs []string
	err := afero.Walk(fs, emailsDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() || p == emailsDir {
			return nil
		}
		if info.Name() == common.PartialsDir || strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(emailsDir, p)
		if err != nil {
			return err
		}
		dirs = append(dirs, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(dirs)
	return dirs, err
}

// FindEmailsDir picks the emails directory of a project rooted at root:
// app/emails in a Nuxt 4 layout, src/emails when src/ exists, emails otherwise.
func FindEmailsDir(fs afero.Fs, root string) string {
	for _, srcDir := range []string{"app", "src"} {
		if ok, _ := afero.DirExists(fs, filepath.Join(root, srcDir)); ok {
			return filepath.Join(root, srcDir, "emails")
		}
	}
	return filepath.Join(root, "emails")
}

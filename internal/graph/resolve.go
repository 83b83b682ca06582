package graph

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"
)

// Resolver maps raw import specifiers onto module paths known to the graph.
// Module paths are slash-separated and relative to the analysis root.
// Resolution never touches the filesystem for source files; only manifest
// files (package.json, go.mod) are read once at construction.
type Resolver struct {
	root       string
	known      map[string]bool
	byDir      map[string][]string
	workspaces map[string]*workspace
	goModule   string
}

// workspace is one npm/bun workspace package.
type workspace struct {
	dir     string
	entry   string
	exports map[string]string // "./queries" → "packages/db/src/queries.ts"
}

// NewResolver indexes modules and scans root for workspace manifests.
func NewResolver(root string, modules []string) *Resolver {
	r := &Resolver{
		root:       root,
		known:      make(map[string]bool, len(modules)),
		byDir:      make(map[string][]string),
		workspaces: make(map[string]*workspace),
	}
	for _, m := range modules {
		m = filepath.ToSlash(m)
		r.known[m] = true
		dir := path.Dir(m)
		r.byDir[dir] = append(r.byDir[dir], m)
	}
	for dir := range r.byDir {
		sort.Strings(r.byDir[dir])
	}
	if root != "" {
		r.loadWorkspaces()
		r.loadGoModule()
	}
	return r
}

// Resolve returns the module imported by spec from importer, where language
// is the importer's language tag. The second result is false for external,
// standard library and otherwise unknown targets.
func (r *Resolver) Resolve(language, importer, spec string) (string, bool) {
	if r.known[spec] {
		return spec, true
	}
	switch language {
	case "typescript", "tsx", "javascript":
		return r.resolveScript(spec, importer)
	case "go":
		return r.resolveGo(spec)
	case "python":
		return r.resolvePython(spec, importer)
	case "rust":
		return r.resolveRust(spec, importer)
	}
	return "", false
}

// ---------- TypeScript / JavaScript ----------

var scriptSuffixes = []string{
	".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs",
	"/index.ts", "/index.tsx", "/index.js", "/index.jsx",
}

func (r *Resolver) resolveScript(spec, importer string) (string, bool) {
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
		base := path.Join(path.Dir(importer), spec)
		if m, ok := r.probe(base, scriptSuffixes); ok {
			return m, true
		}
		// "./x.js" written against a "./x.ts" source.
		if ext := path.Ext(base); ext != "" {
			return r.probe(strings.TrimSuffix(base, ext), scriptSuffixes)
		}
		return "", false
	}
	return r.resolveWorkspace(spec)
}

// splitPackage splits "@scope/pkg/sub" into "@scope/pkg" and "./sub".
func splitPackage(spec string) (pkg, sub string, ok bool) {
	parts := strings.Split(spec, "/")
	n := 1
	if strings.HasPrefix(spec, "@") {
		n = 2
	}
	if len(parts) <= n {
		return "", "", false
	}
	return strings.Join(parts[:n], "/"), "./" + strings.Join(parts[n:], "/"), true
}

func (r *Resolver) resolveWorkspace(spec string) (string, bool) {
	if ws, ok := r.workspaces[spec]; ok {
		return ws.entry, ws.entry != ""
	}
	pkg, sub, ok := splitPackage(spec)
	if !ok {
		return "", false
	}
	ws, ok := r.workspaces[pkg]
	if !ok {
		return "", false
	}
	if m, ok := ws.exports[sub]; ok {
		return m, true
	}
	return r.probe(path.Join(ws.dir, sub), scriptSuffixes)
}

// ---------- Go ----------

func (r *Resolver) resolveGo(spec string) (string, bool) {
	if r.goModule == "" || (spec != r.goModule && !strings.HasPrefix(spec, r.goModule+"/")) {
		return "", false
	}
	dir := strings.TrimPrefix(strings.TrimPrefix(spec, r.goModule), "/")
	if dir == "" {
		dir = "."
	}
	// A Go package is represented by its first non-test file.
	for _, m := range r.byDir[dir] {
		if strings.HasSuffix(m, ".go") && !strings.HasSuffix(m, "_test.go") {
			return m, true
		}
	}
	return "", false
}

// ---------- Python ----------

func (r *Resolver) resolvePython(spec, importer string) (string, bool) {
	rest := strings.TrimLeft(spec, ".")
	dots := len(spec) - len(rest)
	if dots == 0 {
		return r.probe(strings.ReplaceAll(spec, ".", "/"), []string{".py", "/__init__.py"})
	}

	dir := path.Dir(importer)
	for i := 1; i < dots; i++ {
		dir = path.Dir(dir)
	}
	if rest == "" {
		return r.probe(path.Join(dir, "__init__"), []string{".py"})
	}
	return r.probe(path.Join(dir, strings.ReplaceAll(rest, ".", "/")), []string{".py", "/__init__.py"})
}

// ---------- Rust ----------

var rustSuffixes = []string{".rs", "/mod.rs"}

func (r *Resolver) resolveRust(spec, importer string) (string, bool) {
	if i := strings.Index(spec, "::{"); i >= 0 {
		spec = spec[:i]
	}
	head, rest, _ := strings.Cut(spec, "::")
	rel := strings.ReplaceAll(rest, "::", "/")

	var bases []string
	switch head {
	case "crate":
		bases = append(bases, path.Join("src", rel), rel)
		if src := crateSource(importer); src != "" {
			bases = append(bases, path.Join(src, rel))
		}
	case "self":
		bases = append(bases, path.Join(path.Dir(importer), rel))
	case "super":
		bases = append(bases, path.Join(path.Dir(path.Dir(importer)), rel))
	default:
		return "", false
	}

	for _, base := range bases {
		// "crate::a::b::Item" names an item inside a/b.rs, so retry on the
		// parent path once.
		if m, ok := r.probe(base, rustSuffixes); ok {
			return m, true
		}
		if parent := path.Dir(base); parent != "." {
			if m, ok := r.probe(parent, rustSuffixes); ok {
				return m, true
			}
		}
	}
	return "", false
}

// crateSource returns the nearest enclosing "src" directory of file.
func crateSource(file string) string {
	for dir := path.Dir(file); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if path.Base(dir) == "src" {
			return dir
		}
	}
	return ""
}

// probe returns the first known module among base and base+suffix.
func (r *Resolver) probe(base string, suffixes []string) (string, bool) {
	base = path.Clean(base)
	if r.known[base] {
		return base, true
	}
	for _, s := range suffixes {
		if r.known[base+s] {
			return base + s, true
		}
	}
	return "", false
}

// ---------- Manifests ----------

type packageManifest struct {
	Name       string          `json:"name"`
	Main       string          `json:"main"`
	Workspaces json.RawMessage `json:"workspaces"`
	Exports    json.RawMessage `json:"exports"`
}

func readManifest(file string) (*packageManifest, bool) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, false
	}
	var pm packageManifest
	if err := json.Unmarshal(data, &pm); err != nil {
		return nil, false
	}
	return &pm, true
}

func (r *Resolver) loadWorkspaces() {
	rootManifest, ok := readManifest(filepath.Join(r.root, "package.json"))
	if !ok {
		return
	}
	for _, pattern := range workspacePatterns(rootManifest.Workspaces) {
		dirs, err := filepath.Glob(filepath.Join(r.root, filepath.FromSlash(pattern)))
		if err != nil {
			continue
		}
		for _, dir := range dirs {
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				r.loadWorkspace(dir)
			}
		}
	}
}

// workspacePatterns accepts both ["packages/*"] and {"packages": [...]}.
func workspacePatterns(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Packages
	}
	return nil
}

func (r *Resolver) loadWorkspace(absDir string) {
	pm, ok := readManifest(filepath.Join(absDir, "package.json"))
	if !ok || pm.Name == "" {
		return
	}
	rel, err := filepath.Rel(r.root, absDir)
	if err != nil {
		return
	}
	ws := &workspace{dir: filepath.ToSlash(rel), exports: make(map[string]string)}

	r.loadExports(ws, pm.Exports)
	if ws.entry == "" && pm.Main != "" {
		ws.entry, _ = r.probe(path.Join(ws.dir, pm.Main), scriptSuffixes)
	}
	if ws.entry == "" {
		for _, base := range []string{path.Join(ws.dir, "src", "index"), path.Join(ws.dir, "index")} {
			if m, ok := r.probe(base, scriptSuffixes); ok {
				ws.entry = m
				break
			}
		}
	}
	r.workspaces[pm.Name] = ws
}

func (r *Resolver) loadExports(ws *workspace, raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		ws.entry, _ = r.probe(path.Join(ws.dir, single), scriptSuffixes)
		return
	}
	var table map[string]json.RawMessage
	if err := json.Unmarshal(raw, &table); err != nil {
		return
	}
	for key, val := range table {
		target := exportTarget(val)
		if target == "" {
			continue
		}
		m, ok := r.probe(path.Join(ws.dir, target), scriptSuffixes)
		if !ok {
			continue
		}
		if key == "." {
			ws.entry = m
		} else {
			ws.exports[key] = m
		}
	}
}

// exportTarget unwraps a conditional export, preferring import over default
// over require.
func exportTarget(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var cond map[string]json.RawMessage
	if err := json.Unmarshal(raw, &cond); err != nil {
		return ""
	}
	for _, key := range []string{"import", "default", "require"} {
		if v, ok := cond[key]; ok {
			return exportTarget(v)
		}
	}
	return ""
}

func (r *Resolver) loadGoModule() {
	data, err := os.ReadFile(filepath.Join(r.root, "go.mod"))
	if err != nil {
		return
	}
	r.goModule = modfile.ModulePath(data)
}
